// Package fsinfo reads filesystem information the browser needs: directory
// listings, mount points and directory sizes.
package fsinfo

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zsh-ncursed/corvus/internal/model"
)

const mountsFile = "/proc/self/mounts"

// ReadEntries lists a directory sorted directories-first, then by name.
// Hidden entries (dot prefixed) are filtered out unless showHidden is set.
func ReadEntries(path string, showHidden bool) ([]model.Entry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("could not read directory: %w", err)
	}

	entries := make([]model.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !showHidden && strings.HasPrefix(de.Name(), ".") {
			continue
		}

		info, err := de.Info()
		if err != nil {
			// Entry vanished between listing and stat, skip it.
			continue
		}

		entries = append(entries, model.Entry{
			Name:    de.Name(),
			Path:    filepath.Join(path, de.Name()),
			IsDir:   de.IsDir(),
			Size:    info.Size(),
			Mode:    uint32(info.Mode().Perm()),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// MountPoints parses the OS mount table.
func MountPoints() ([]model.MountPoint, error) {
	f, err := os.Open(mountsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open mount table: %w", err)
	}
	defer f.Close()

	var mounts []model.MountPoint
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts = append(mounts, model.MountPoint{
			Device: fields[0],
			Path:   unescapeMountPath(fields[1]),
			FSType: fields[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read mount table: %w", err)
	}

	return mounts, nil
}

// unescapeMountPath decodes the octal escapes the kernel uses for spaces,
// tabs and newlines in mount paths.
func unescapeMountPath(s string) string {
	replacer := strings.NewReplacer(
		`\040`, " ",
		`\011`, "\t",
		`\012`, "\n",
		`\134`, `\`,
	)
	return replacer.Replace(s)
}

// DirectorySize walks path and sums the sizes of regular files. Unreadable
// entries are skipped.
func DirectorySize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})

	return total
}
