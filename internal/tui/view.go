package tui

import (
	"fmt"
	"strings"

	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/printer"
)

// taskFooterLines is how many recent tasks the footer shows.
const taskFooterLines = 5

func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.viewTopBar())
	b.WriteString("\n")
	b.WriteString(m.viewEntries())
	b.WriteString("\n")
	b.WriteString(m.viewTasks())
	b.WriteString(m.viewStatusLine())

	return b.String()
}

func (m *Model) viewTopBar() string {
	tab := m.browser.ActiveTab()
	active := m.browser.ActiveTabIndex()

	var tabs []string
	for i, t := range m.browser.Tabs() {
		label := fmt.Sprintf("[%d]", t.ID+1)
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}

	return topBarStyle.Render(tab.CurrentDir) + "  " + strings.Join(tabs, " ")
}

func (m *Model) viewEntries() string {
	tab := m.browser.ActiveTab()

	listHeight := m.height - taskFooterLines - 4
	if listHeight < 1 {
		listHeight = 1
	}

	// Keep the cursor in the visible window.
	start := 0
	if tab.Cursor >= listHeight {
		start = tab.Cursor - listHeight + 1
	}
	end := start + listHeight
	if end > len(tab.Entries) {
		end = len(tab.Entries)
	}

	var lines []string
	for i := start; i < end; i++ {
		e := tab.Entries[i]

		name := e.Name
		size := ""
		if e.IsDir {
			name = dirStyle.Render(name + "/")
		} else {
			size = dimStyle.Render(printer.FormatBytes(e.Size))
		}

		mark := " "
		if tab.Marked[e.Path] {
			mark = markedStyle.Render("*")
		}

		line := fmt.Sprintf("%s %s %s", mark, name, size)
		if i == tab.Cursor {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		lines = []string{dimStyle.Render("(empty)")}
	}

	return strings.Join(lines, "\n")
}

func (m *Model) viewTasks() string {
	tasks := m.engine.GetTasks()

	start := 0
	if len(tasks) > taskFooterLines {
		start = len(tasks) - taskFooterLines
	}

	var lines []string
	for _, t := range tasks[start:] {
		var status string
		switch t.Status.State {
		case model.TaskStateCompleted:
			status = taskDoneStyle.Render("done")
		case model.TaskStateFailed:
			status = taskFailedStyle.Render("failed: " + t.Status.Reason)
		default:
			status = dimStyle.Render(string(t.Status.State))
		}
		lines = append(lines, fmt.Sprintf("%s  %s", t.Description, status))
	}

	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

func (m *Model) viewStatusLine() string {
	if m.mode != modeNormal {
		return promptStyle.Render(m.prompt) + m.input
	}
	if m.status != "" {
		return dimStyle.Render(m.status)
	}

	return dimStyle.Render("q quit · y yank · x cut · p paste · d delete · a archive · / filter")
}
