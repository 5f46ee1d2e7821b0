package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/zsh-ncursed/corvus/internal/model"
)

// TablePrinter prints task information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTaskList prints tasks in a table format.
func (t *TablePrinter) PrintTaskList(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "ID\tOPERATION\tDESCRIPTION\tSTATUS\tCREATED")

	// Print rows
	for _, tk := range tasks {
		status := string(tk.Status.State)
		if tk.Status.State == model.TaskStateFailed {
			status = fmt.Sprintf("failed: %s", tk.Status.Reason)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tk.ID, tk.Kind.Op, tk.Description, status, TimeAgo(tk.CreatedAt))
	}

	return nil
}

// PrintMessage prints a plain message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}
