package printer

import "github.com/zsh-ncursed/corvus/internal/model"

// Printer knows how to print task information in different formats.
type Printer interface {
	PrintTaskList(tasks []model.Task) error
	PrintMessage(msg string) error
}
