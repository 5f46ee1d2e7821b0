package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/printer"
)

type ArchiveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	paths  []string
	output string
	format string
	json   bool
}

// NewArchiveCommand returns the archive command, a headless way to pack
// paths into an archive through the task engine.
func NewArchiveCommand(rootCmd *RootCommand, app *kingpin.Application) *ArchiveCommand {
	c := &ArchiveCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("archive", "Pack files and directories into an archive.")
	c.Cmd.Arg("path", "Paths to archive.").Required().StringsVar(&c.paths)
	c.Cmd.Flag("output", "Destination archive file.").Short('o').Required().StringVar(&c.output)
	c.Cmd.Flag("format", "Archive format.").Default(model.ArchiveFormatZip).EnumVar(&c.format,
		model.ArchiveFormatZip, model.ArchiveFormatTar, model.ArchiveFormatTarGz)
	c.Cmd.Flag("json", "Print the task result as JSON.").BoolVar(&c.json)

	return c
}

func (c ArchiveCommand) Name() string { return c.Cmd.FullCommand() }

func (c ArchiveCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	manager, err := newTaskManager(logger)
	if err != nil {
		return err
	}

	taskID := manager.AddTask(model.TaskKind{
		Op:     model.TaskOpArchive,
		Paths:  c.paths,
		Dest:   c.output,
		Format: c.format,
	}, fmt.Sprintf("Archive %d items to %s", len(c.paths), c.output))

	manager.ProcessPendingTasks(ctx)

	// One task in flight, its single terminal event ends the wait.
	manager.WaitForEvent(ctx)

	var p printer.Printer = printer.NewTablePrinter(c.rootCmd.Stdout)
	if c.json {
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	}
	if err := p.PrintTaskList(manager.GetTasks()); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	for _, t := range manager.GetTasks() {
		if t.ID == taskID && t.Status.State == model.TaskStateFailed {
			return fmt.Errorf("archive failed: %s", t.Status.Reason)
		}
	}

	if err := p.PrintMessage(fmt.Sprintf("Archive written to %s", c.output)); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}
