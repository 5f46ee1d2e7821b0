package executor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/runner/runnermock"
	"github.com/zsh-ncursed/corvus/internal/task/executor"
)

type fakeArchiver struct {
	paths  []string
	dest   string
	format string
	err    error
}

func (f *fakeArchiver) Build(ctx context.Context, paths []string, dest, format string) error {
	f.paths = paths
	f.dest = dest
	f.format = format
	return f.err
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		cfg    executor.Config
		expErr bool
		errMsg string
	}{
		"Valid config": {
			cfg: executor.Config{
				Runner:   &runnermock.Runner{},
				Archiver: &fakeArchiver{},
			},
			expErr: false,
		},
		"Missing runner returns error": {
			cfg:    executor.Config{Archiver: &fakeArchiver{}},
			expErr: true,
			errMsg: "runner is required",
		},
		"Missing archiver returns error": {
			cfg:    executor.Config{Runner: &runnermock.Runner{}},
			expErr: true,
			errMsg: "archiver is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e, err := executor.New(tt.cfg)

			if tt.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, e)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, e)
			}
		})
	}
}

func TestExecuteCopy(t *testing.T) {
	e := newExecutor(t, &runnermock.Runner{}, &fakeArchiver{})

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("hi"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir"), 0755))
	dest := filepath.Join(dir, "dir", "a.txt")

	err := e.Execute(context.Background(), model.TaskKind{Op: model.TaskOpCopy, Src: src, Dest: dest})
	require.NoError(t, err)

	// Destination has the content and the source is untouched.
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestExecuteMove(t *testing.T) {
	e := newExecutor(t, &runnermock.Runner{}, &fakeArchiver{})

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("hi"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir"), 0755))
	dest := filepath.Join(dir, "dir", "a.txt")

	err := e.Execute(context.Background(), model.TaskKind{Op: model.TaskOpMove, Src: src, Dest: dest})
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))

	// Source is gone.
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteDelete(t *testing.T) {
	tests := map[string]struct {
		setup  func(t *testing.T, dir string) string
		expErr bool
	}{
		"Deleting a file removes it": {
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "a.txt")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
		},
		"Deleting a directory removes it recursively": {
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "sub")
				require.NoError(t, os.MkdirAll(filepath.Join(path, "nested"), 0755))
				require.NoError(t, os.WriteFile(filepath.Join(path, "nested", "f"), []byte("x"), 0644))
				return path
			},
		},
		"Deleting a missing path fails": {
			setup:  func(t *testing.T, dir string) string { return filepath.Join(dir, "nonexistent") },
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := newExecutor(t, &runnermock.Runner{}, &fakeArchiver{})
			dir := t.TempDir()
			path := tt.setup(t, dir)

			err := e.Execute(context.Background(), model.TaskKind{Op: model.TaskOpDelete, Path: path})

			if tt.expErr {
				require.Error(t, err)
				assert.NotEmpty(t, err.Error())
				return
			}
			require.NoError(t, err)
			_, err = os.Stat(path)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestExecuteCreate(t *testing.T) {
	e := newExecutor(t, &runnermock.Runner{}, &fakeArchiver{})
	dir := t.TempDir()

	filePath := filepath.Join(dir, "new.txt")
	require.NoError(t, e.Execute(context.Background(), model.TaskKind{Op: model.TaskOpCreateFile, Path: filePath}))
	info, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	dirPath := filepath.Join(dir, "newdir")
	require.NoError(t, e.Execute(context.Background(), model.TaskKind{Op: model.TaskOpCreateDirectory, Path: dirPath}))
	info, err = os.Stat(dirPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExecuteChmod(t *testing.T) {
	e := newExecutor(t, &runnermock.Runner{}, &fakeArchiver{})

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := e.Execute(context.Background(), model.TaskKind{Op: model.TaskOpChmod, Path: path, Mode: 0600})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestExecuteChown(t *testing.T) {
	tests := map[string]struct {
		runErr error
		expErr string
	}{
		"Successful chown": {},
		"Failed chown surfaces the stderr text": {
			runErr: errors.New("chown: invalid user: 'nobody:nope'"),
			expErr: "chown: invalid user: 'nobody:nope'",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mr := &runnermock.Runner{}
			mr.On("Run", mock.Anything, "sudo", "chown", "user:group", "/tmp/a").Once().Return(tt.runErr)

			e := newExecutor(t, mr, &fakeArchiver{})
			err := e.Execute(context.Background(), model.TaskKind{Op: model.TaskOpChown, Path: "/tmp/a", Owner: "user:group"})

			if tt.expErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expErr, err.Error())
			} else {
				require.NoError(t, err)
			}
			mr.AssertExpectations(t)
		})
	}
}

func TestExecuteUnmount(t *testing.T) {
	mr := &runnermock.Runner{}
	mr.On("Run", mock.Anything, "umount", "/mnt/usb").Once().Return(errors.New("umount: /mnt/usb: target is busy"))

	e := newExecutor(t, mr, &fakeArchiver{})
	err := e.Execute(context.Background(), model.TaskKind{Op: model.TaskOpUnmount, Path: "/mnt/usb"})

	require.Error(t, err)
	assert.Equal(t, "umount: /mnt/usb: target is busy", err.Error())
	mr.AssertExpectations(t)
}

func TestExecuteArchiveDelegates(t *testing.T) {
	fa := &fakeArchiver{}
	e := newExecutor(t, &runnermock.Runner{}, fa)

	err := e.Execute(context.Background(), model.TaskKind{
		Op:     model.TaskOpArchive,
		Paths:  []string{"/tmp/a", "/tmp/b"},
		Dest:   "/tmp/out.zip",
		Format: "zip",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/a", "/tmp/b"}, fa.paths)
	assert.Equal(t, "/tmp/out.zip", fa.dest)
	assert.Equal(t, "zip", fa.format)
}

func TestExecuteUnknownOp(t *testing.T) {
	e := newExecutor(t, &runnermock.Runner{}, &fakeArchiver{})

	err := e.Execute(context.Background(), model.TaskKind{Op: "defragment"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task operation")
}

func newExecutor(t *testing.T, r *runnermock.Runner, a executor.Archiver) *executor.Executor {
	t.Helper()

	e, err := executor.New(executor.Config{Runner: r, Archiver: a})
	require.NoError(t, err)

	return e
}
