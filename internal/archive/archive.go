// Package archive serializes sets of files and directories into a single
// container file. Three formats are supported: zip, tar and gzip-compressed
// tar.
//
// Entry naming differs between formats: the zip path stores a directory
// input's contents relative to the directory itself (its own name is not a
// prefix), while the tar path keeps the directory's own name as the
// top-level entry. Both behaviors are long-standing and kept as is.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zsh-ncursed/corvus/internal/log"
	"github.com/zsh-ncursed/corvus/internal/model"
)

// BuilderConfig is the configuration for the archive builder.
type BuilderConfig struct {
	Logger log.Logger
}

func (c *BuilderConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "archive.Builder"})
	return nil
}

// Builder writes archives in the supported formats.
type Builder struct {
	logger log.Logger
}

// NewBuilder creates a new archive builder.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Builder{logger: cfg.Logger}, nil
}

// Build serializes paths into a single archive at dest. Any traversal or
// write error aborts the whole operation; a partial destination file may be
// left behind (best effort only). An unrecognized format tag is an error,
// never a silent default.
func (b *Builder) Build(ctx context.Context, paths []string, dest, format string) error {
	switch format {
	case model.ArchiveFormatZip:
		return b.buildZip(paths, dest)
	case model.ArchiveFormatTar:
		return b.buildTar(paths, dest, false)
	case model.ArchiveFormatTarGz:
		return b.buildTar(paths, dest, true)
	default:
		return fmt.Errorf("unsupported archive format: %s", format)
	}
}

// buildZip writes a zip archive. File inputs become entries named by their
// base name. Directory inputs are walked and stored relative to the
// directory itself, with explicit entries for subdirectories.
func (b *Builder) buildZip(paths []string, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create archive file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("could not stat %s: %w", path, err)
		}

		if info.IsDir() {
			if err := addDirToZip(zw, path, path); err != nil {
				return err
			}
			continue
		}

		if err := addFileToZip(zw, filepath.Base(path), path); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not finish archive: %w", err)
	}

	b.logger.Debugf("Wrote zip archive %s (%d inputs)", dest, len(paths))

	return nil
}

// addDirToZip recursively adds dirPath's contents with names relative to
// basePath.
func addDirToZip(zw *zip.Writer, basePath, dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("could not read directory %s: %w", dirPath, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dirPath, entry.Name())

		rel, err := filepath.Rel(basePath, path)
		if err != nil {
			return fmt.Errorf("could not relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if _, err := zw.Create(rel + "/"); err != nil {
				return fmt.Errorf("could not add directory entry %s: %w", rel, err)
			}
			if err := addDirToZip(zw, basePath, path); err != nil {
				return err
			}
			continue
		}

		if err := addFileToZip(zw, rel, path); err != nil {
			return err
		}
	}

	return nil
}

func addFileToZip(zw *zip.Writer, name, path string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("could not add entry %s: %w", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("could not write entry %s: %w", name, err)
	}

	return nil
}

// buildTar writes a tar archive, optionally gzip compressed. File inputs are
// appended under their own path as given. Directory inputs are appended
// under their base name, keeping it as the top-level entry prefix.
func (b *Builder) buildTar(paths []string, dest string, compressed bool) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create archive file: %w", err)
	}
	defer f.Close()

	var tw *tar.Writer
	var gz *gzip.Writer
	if compressed {
		gz = gzip.NewWriter(f)
		tw = tar.NewWriter(gz)
	} else {
		tw = tar.NewWriter(f)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("could not stat %s: %w", path, err)
		}

		if info.IsDir() {
			if err := addDirToTar(tw, filepath.Base(path), path); err != nil {
				return err
			}
			continue
		}

		if err := addFileToTar(tw, filepath.ToSlash(path), path, info); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("could not finish archive: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("could not finish compression: %w", err)
		}
	}

	b.logger.Debugf("Wrote tar archive %s (%d inputs, compressed=%t)", dest, len(paths), compressed)

	return nil
}

// addDirToTar appends dirPath and its full contents under the top-level
// entry name prefix.
func addDirToTar(tw *tar.Writer, prefix, dirPath string) error {
	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("could not walk %s: %w", path, err)
		}

		rel, err := filepath.Rel(dirPath, path)
		if err != nil {
			return fmt.Errorf("could not relativize %s: %w", path, err)
		}

		name := prefix
		if rel != "." {
			name = prefix + "/" + filepath.ToSlash(rel)
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("could not stat %s: %w", path, err)
		}

		if d.IsDir() {
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return fmt.Errorf("could not build header for %s: %w", path, err)
			}
			hdr.Name = name + "/"
			if err := tw.WriteHeader(hdr); err != nil {
				return fmt.Errorf("could not add directory entry %s: %w", name, err)
			}
			return nil
		}

		return addFileToTar(tw, name, path, info)
	})
}

func addFileToTar(tw *tar.Writer, name, path string, info fs.FileInfo) error {
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("could not build header for %s: %w", path, err)
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("could not add entry %s: %w", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("could not write entry %s: %w", name, err)
	}

	return nil
}
