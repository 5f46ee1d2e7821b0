// Package executor performs the filesystem and process level work behind
// each task kind.
package executor

import (
	"context"
	"fmt"
	"os"

	"github.com/zsh-ncursed/corvus/internal/log"
	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/runner"
)

// Archiver builds an archive file out of a set of paths.
type Archiver interface {
	Build(ctx context.Context, paths []string, dest, format string) error
}

// Config is the configuration for the executor.
type Config struct {
	// Runner runs the external privileged utilities (chown, umount).
	Runner runner.Runner
	// Archiver handles archive tasks.
	Archiver Archiver
	Logger   log.Logger
}

func (c *Config) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Archiver == nil {
		return fmt.Errorf("archiver is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Executor"})
	return nil
}

// Executor resolves a task kind to its operation and runs it. Every
// operation either succeeds or returns a single error, the caller turns
// that into the task's one terminal event.
type Executor struct {
	runner   runner.Runner
	archiver Archiver
	logger   log.Logger
}

// New creates a new executor.
func New(cfg Config) (*Executor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Executor{
		runner:   cfg.Runner,
		archiver: cfg.Archiver,
		logger:   cfg.Logger,
	}, nil
}

// Execute runs the operation for kind. The switch is exhaustive over the
// closed variant set.
func (e *Executor) Execute(ctx context.Context, kind model.TaskKind) error {
	switch kind.Op {
	case model.TaskOpCopy:
		return e.copyFile(ctx, kind.Src, kind.Dest)
	case model.TaskOpMove:
		return e.moveItem(kind.Src, kind.Dest)
	case model.TaskOpDelete:
		return e.deleteItem(kind.Path)
	case model.TaskOpCreateFile:
		return e.createFile(kind.Path)
	case model.TaskOpCreateDirectory:
		return e.createDirectory(kind.Path)
	case model.TaskOpChmod:
		return e.chmod(kind.Path, kind.Mode)
	case model.TaskOpChown:
		return e.chown(ctx, kind.Path, kind.Owner)
	case model.TaskOpUnmount:
		return e.unmount(ctx, kind.Path)
	case model.TaskOpArchive:
		return e.archiver.Build(ctx, kind.Paths, kind.Dest, kind.Format)
	default:
		return fmt.Errorf("unknown task operation: %s", kind.Op)
	}
}

// copyFile copies preserving the source's permission bits and, where the
// filesystem supports it, its sparse layout.
func (e *Executor) copyFile(ctx context.Context, src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("could not stat source: %w", err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("could not create destination: %w", err)
	}

	if err := copyContents(ctx, in, out); err != nil {
		out.Close()
		return fmt.Errorf("could not copy contents: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("could not finish destination: %w", err)
	}

	return nil
}

func (e *Executor) moveItem(src, dest string) error {
	if err := os.Rename(src, dest); err != nil {
		return fmt.Errorf("could not move: %w", err)
	}
	return nil
}

// deleteItem removes a single file or a whole directory tree, directory
// detection decides which.
func (e *Executor) deleteItem(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("could not stat: %w", err)
	}

	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("could not delete: %w", err)
	}

	return nil
}

func (e *Executor) createFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	return f.Close()
}

func (e *Executor) createDirectory(path string) error {
	if err := os.Mkdir(path, 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}
	return nil
}

// chmod applies the requested permission bits verbatim.
func (e *Executor) chmod(path string, mode uint32) error {
	if err := os.Chmod(path, os.FileMode(mode)); err != nil {
		return fmt.Errorf("could not change permissions: %w", err)
	}
	return nil
}

// chown shells out under elevation, ownership changes usually need it. The
// runner surfaces the utility's stderr as the failure reason.
func (e *Executor) chown(ctx context.Context, path, owner string) error {
	return e.runner.Run(ctx, "sudo", "chown", owner, path)
}

func (e *Executor) unmount(ctx context.Context, path string) error {
	return e.runner.Run(ctx, "umount", path)
}
