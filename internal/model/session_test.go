package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zsh-ncursed/corvus/internal/model"
)

func TestSessionStateValidate(t *testing.T) {
	tests := map[string]struct {
		session model.SessionState
		expErr  bool
	}{
		"A session with one tab is valid": {
			session: model.SessionState{Tabs: []model.TabState{{ID: 1, CurrentDir: "/"}}},
		},
		"A session without tabs is invalid": {
			session: model.SessionState{},
			expErr:  true,
		},
		"An active tab index past the tab list is invalid": {
			session: model.SessionState{
				Tabs:           []model.TabState{{ID: 1, CurrentDir: "/"}},
				ActiveTabIndex: 1,
			},
			expErr: true,
		},
		"A negative active tab index is invalid": {
			session: model.SessionState{
				Tabs:           []model.TabState{{ID: 1, CurrentDir: "/"}},
				ActiveTabIndex: -1,
			},
			expErr: true,
		},
		"A bookmark without a path is invalid": {
			session: model.SessionState{
				Tabs:      []model.TabState{{ID: 1, CurrentDir: "/"}},
				Bookmarks: []model.Bookmark{{Name: "home"}},
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.session.Validate()

			if tt.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
