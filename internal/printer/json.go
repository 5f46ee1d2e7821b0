package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/zsh-ncursed/corvus/internal/model"
)

// JSONPrinter prints task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskItem represents a task in the list output.
type taskItem struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Progress    float64   `json:"progress"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PrintTaskList prints tasks in JSON format.
func (p *JSONPrinter) PrintTaskList(tasks []model.Task) error {
	items := make([]taskItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{
			ID:          t.ID,
			Operation:   string(t.Kind.Op),
			Description: t.Description,
			Status:      string(t.Status.State),
			Progress:    t.Status.Progress,
			Reason:      t.Status.Reason,
			CreatedAt:   t.CreatedAt,
		})
	}

	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintMessage prints a message as a JSON object.
func (p *JSONPrinter) PrintMessage(msg string) error {
	enc := json.NewEncoder(p.writer)
	return enc.Encode(map[string]string{"message": msg})
}
