package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zsh-ncursed/corvus/internal/clipboard"
	"github.com/zsh-ncursed/corvus/internal/fsinfo"
	"github.com/zsh-ncursed/corvus/internal/model"
)

// YankSelection puts the target paths on the clipboard for a copying paste.
func (s *Service) YankSelection() {
	paths := s.targetPaths()
	if len(paths) == 0 {
		return
	}
	s.clipboard.Yank(paths)
	s.clearMarks()
}

// CutSelection puts the target paths on the clipboard for a moving paste.
func (s *Service) CutSelection() {
	paths := s.targetPaths()
	if len(paths) == 0 {
		return
	}
	s.clipboard.Cut(paths)
	s.clearMarks()
}

// ClipboardEmpty reports whether a paste would have anything to do.
func (s *Service) ClipboardEmpty() bool {
	return s.clipboard.Empty()
}

// SelectionSize returns the selected entry and its size in bytes. Directories
// are summed recursively.
func (s *Service) SelectionSize() (model.Entry, int64, error) {
	entry, ok := s.selectedEntry()
	if !ok {
		return model.Entry{}, 0, fmt.Errorf("no entry selected: %w", model.ErrNotFound)
	}
	if !entry.IsDir {
		return entry, entry.Size, nil
	}

	return entry, fsinfo.DirectorySize(entry.Path), nil
}

// PasteConflicts returns the clipboard entries whose destination in the
// active tab's directory already exists, so the caller can ask for overwrite
// confirmation first.
func (s *Service) PasteConflicts() []string {
	paths, _ := s.clipboard.Contents()
	dest := s.ActiveTab().CurrentDir

	var conflicts []string
	for _, src := range paths {
		if _, err := os.Stat(filepath.Join(dest, filepath.Base(src))); err == nil {
			conflicts = append(conflicts, src)
		}
	}

	return conflicts
}

// Paste submits one copy or move task per clipboard path, targeting the
// active tab's directory. A moving paste consumes the clipboard, a copying
// paste keeps it.
func (s *Service) Paste() {
	paths, mode := s.clipboard.Contents()
	if len(paths) == 0 || mode == clipboard.ModeNone {
		return
	}

	destDir := s.ActiveTab().CurrentDir
	for _, src := range paths {
		dest := filepath.Join(destDir, filepath.Base(src))
		description := fmt.Sprintf("%s %s -> %s", mode, filepath.Base(src), destDir)

		kind := model.TaskKind{Op: model.TaskOpCopy, Src: src, Dest: dest}
		if mode == clipboard.ModeMove {
			kind.Op = model.TaskOpMove
		}
		s.tasks.AddTask(kind, description)
	}

	if mode == clipboard.ModeMove {
		s.clipboard.Clear()
	}
}

// DeleteSelection submits one delete task per target path and clears marks.
func (s *Service) DeleteSelection() {
	for _, path := range s.targetPaths() {
		s.tasks.AddTask(
			model.TaskKind{Op: model.TaskOpDelete, Path: path},
			fmt.Sprintf("Delete %s", filepath.Base(path)),
		)
	}
	s.clearMarks()
}

// CreateFile submits a file creation task in the active tab's directory.
func (s *Service) CreateFile(name string) error {
	return s.createItem(name, model.TaskOpCreateFile)
}

// CreateDirectory submits a directory creation task in the active tab's
// directory.
func (s *Service) CreateDirectory(name string) error {
	return s.createItem(name, model.TaskOpCreateDirectory)
}

func (s *Service) createItem(name string, op model.TaskOp) error {
	if name == "" {
		return fmt.Errorf("name is required: %w", model.ErrNotValid)
	}

	path := filepath.Join(s.ActiveTab().CurrentDir, name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", name, model.ErrAlreadyExists)
	}

	s.tasks.AddTask(
		model.TaskKind{Op: op, Path: path},
		fmt.Sprintf("Create %s", path),
	)

	return nil
}

// RenameSelection submits a move task renaming the selected entry in place.
func (s *Service) RenameSelection(newName string) error {
	if newName == "" {
		return fmt.Errorf("name is required: %w", model.ErrNotValid)
	}

	entry, ok := s.selectedEntry()
	if !ok {
		return fmt.Errorf("no entry selected: %w", model.ErrNotFound)
	}

	newPath := filepath.Join(filepath.Dir(entry.Path), newName)
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("%s: %w", newName, model.ErrAlreadyExists)
	}

	s.tasks.AddTask(
		model.TaskKind{Op: model.TaskOpMove, Src: entry.Path, Dest: newPath},
		fmt.Sprintf("Rename %s to %s", entry.Path, newPath),
	)

	return nil
}

// ChmodSelection parses octal permission bits and submits one chmod task per
// target path.
func (s *Service) ChmodSelection(octal string) error {
	mode, err := strconv.ParseUint(octal, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid octal mode %q: %w", octal, model.ErrNotValid)
	}

	for _, path := range s.targetPaths() {
		s.tasks.AddTask(
			model.TaskKind{Op: model.TaskOpChmod, Path: path, Mode: uint32(mode)},
			fmt.Sprintf("Chmod %s to %o", filepath.Base(path), mode),
		)
	}
	s.clearMarks()

	return nil
}

// ChownSelection submits a chown task for the selected entry.
func (s *Service) ChownSelection(owner string) error {
	if owner == "" {
		return fmt.Errorf("owner is required: %w", model.ErrNotValid)
	}

	entry, ok := s.selectedEntry()
	if !ok {
		return fmt.Errorf("no entry selected: %w", model.ErrNotFound)
	}

	s.tasks.AddTask(
		model.TaskKind{Op: model.TaskOpChown, Path: entry.Path, Owner: owner},
		fmt.Sprintf("Chown %s to %s", entry.Name, owner),
	)

	return nil
}

// CurrentMount returns the deepest mount point containing the active tab's
// directory.
func (s *Service) CurrentMount() (model.MountPoint, error) {
	mounts, err := fsinfo.MountPoints()
	if err != nil {
		return model.MountPoint{}, fmt.Errorf("could not read mount points: %w", err)
	}

	dir := s.ActiveTab().CurrentDir
	var best model.MountPoint
	found := false
	for _, m := range mounts {
		if !pathContains(m.Path, dir) {
			continue
		}
		if !found || len(m.Path) > len(best.Path) {
			best = m
			found = true
		}
	}
	if !found {
		return model.MountPoint{}, fmt.Errorf("no mount point for %s: %w", dir, model.ErrNotFound)
	}

	return best, nil
}

// pathContains reports whether dir lives under (or is) the mount root.
func pathContains(root, dir string) bool {
	if root == "/" {
		return true
	}
	return dir == root || strings.HasPrefix(dir, root+"/")
}

// Unmount submits an unmount task for a mount point.
func (s *Service) Unmount(path string) {
	s.tasks.AddTask(
		model.TaskKind{Op: model.TaskOpUnmount, Path: path},
		fmt.Sprintf("Unmount %s", path),
	)
}

// ArchiveSelection submits an archive task packing the target paths into
// name.<ext> in the active tab's directory.
func (s *Service) ArchiveSelection(name, format string) error {
	if name == "" {
		return fmt.Errorf("archive name is required: %w", model.ErrNotValid)
	}
	switch format {
	case model.ArchiveFormatZip, model.ArchiveFormatTar, model.ArchiveFormatTarGz:
	default:
		return fmt.Errorf("unsupported archive format %q: %w", format, model.ErrNotValid)
	}

	paths := s.targetPaths()
	if len(paths) == 0 {
		return fmt.Errorf("no entry selected: %w", model.ErrNotFound)
	}

	dest := filepath.Join(s.ActiveTab().CurrentDir, name+"."+format)
	s.tasks.AddTask(
		model.TaskKind{Op: model.TaskOpArchive, Paths: paths, Dest: dest, Format: format},
		fmt.Sprintf("Archive %d items to %s", len(paths), dest),
	)
	s.clearMarks()

	return nil
}

// Tasks returns the task registry snapshot for display.
func (s *Service) Tasks() []model.Task {
	return s.tasks.GetTasks()
}
