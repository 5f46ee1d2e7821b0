package commands

import (
	"fmt"

	"github.com/zsh-ncursed/corvus/internal/archive"
	"github.com/zsh-ncursed/corvus/internal/log"
	"github.com/zsh-ncursed/corvus/internal/runner"
	"github.com/zsh-ncursed/corvus/internal/task"
	"github.com/zsh-ncursed/corvus/internal/task/executor"
)

// newTaskManager assembles the task engine: OS command runner, archive
// builder, executor and the manager on top.
func newTaskManager(logger log.Logger) (*task.Manager, error) {
	archiver, err := archive.NewBuilder(archive.BuilderConfig{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create archive builder: %w", err)
	}

	exec, err := executor.New(executor.Config{
		Runner:   runner.NewOSRunner(),
		Archiver: archiver,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create executor: %w", err)
	}

	manager, err := task.NewManager(task.ManagerConfig{
		Executor: exec,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task manager: %w", err)
	}

	return manager, nil
}
