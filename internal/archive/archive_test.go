package archive_test

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsh-ncursed/corvus/internal/archive"
)

// makeTree builds dir/src/{file1.txt,sub/file2.txt} and returns src's path.
func makeTree(t *testing.T, dir string) string {
	t.Helper()

	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "file1.txt"), []byte("one"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "file2.txt"), []byte("two"), 0644))

	return src
}

func TestBuildZipFlattensTopDirectory(t *testing.T) {
	b := newBuilder(t)
	dir := t.TempDir()
	src := makeTree(t, dir)
	dest := filepath.Join(dir, "out.zip")

	err := b.Build(context.Background(), []string{src}, dest, "zip")
	require.NoError(t, err)

	// A directory input's own name is not a prefix inside the zip.
	entries := readZipEntries(t, dest)
	assert.Equal(t, map[string]string{
		"file1.txt":     "one",
		"sub/":          "",
		"sub/file2.txt": "two",
	}, entries)
}

func TestBuildZipFileInputsUseBaseName(t *testing.T) {
	b := newBuilder(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
	dest := filepath.Join(dir, "out.zip")

	err := b.Build(context.Background(), []string{path}, dest, "zip")
	require.NoError(t, err)

	entries := readZipEntries(t, dest)
	assert.Equal(t, map[string]string{"notes.txt": "hello"}, entries)
}

func TestBuildTarKeepsDirectoryName(t *testing.T) {
	b := newBuilder(t)
	dir := t.TempDir()
	src := makeTree(t, dir)
	dest := filepath.Join(dir, "out.tar")

	err := b.Build(context.Background(), []string{src}, dest, "tar")
	require.NoError(t, err)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	// A directory input keeps its own name as the top-level entry.
	entries := readTarEntries(t, tar.NewReader(f))
	assert.Equal(t, map[string]string{
		"src/":              "",
		"src/file1.txt":     "one",
		"src/sub/":          "",
		"src/sub/file2.txt": "two",
	}, entries)
}

func TestBuildTarGzIsGzipCompressedTar(t *testing.T) {
	b := newBuilder(t)
	dir := t.TempDir()
	src := makeTree(t, dir)
	dest := filepath.Join(dir, "out.tar.gz")

	err := b.Build(context.Background(), []string{src}, dest, "tar.gz")
	require.NoError(t, err)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	entries := readTarEntries(t, tar.NewReader(gz))
	assert.Contains(t, entries, "src/file1.txt")
	assert.Contains(t, entries, "src/sub/file2.txt")
}

func TestBuildMultipleInputs(t *testing.T) {
	b := newBuilder(t)
	dir := t.TempDir()
	src := makeTree(t, dir)
	extra := filepath.Join(dir, "readme.md")
	require.NoError(t, os.WriteFile(extra, []byte("docs"), 0644))
	dest := filepath.Join(dir, "out.zip")

	err := b.Build(context.Background(), []string{src, extra}, dest, "zip")
	require.NoError(t, err)

	entries := readZipEntries(t, dest)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"file1.txt", "readme.md", "sub/", "sub/file2.txt"}, names)
}

func TestBuildUnsupportedFormat(t *testing.T) {
	b := newBuilder(t)
	dir := t.TempDir()

	err := b.Build(context.Background(), []string{dir}, filepath.Join(dir, "out.rar"), "rar")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}

func TestBuildMissingInput(t *testing.T) {
	b := newBuilder(t)
	dir := t.TempDir()

	err := b.Build(context.Background(), []string{filepath.Join(dir, "nonexistent")}, filepath.Join(dir, "out.tar"), "tar")

	require.Error(t, err)
}

func newBuilder(t *testing.T) *archive.Builder {
	t.Helper()

	b, err := archive.NewBuilder(archive.BuilderConfig{})
	require.NoError(t, err)

	return b
}

func readZipEntries(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	entries := map[string]string{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			entries[f.Name] = ""
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(data)
	}

	return entries
}

func readTarEntries(t *testing.T, tr *tar.Reader) map[string]string {
	t.Helper()

	entries := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		if hdr.Typeflag == tar.TypeDir {
			entries[hdr.Name] = ""
			continue
		}
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries[hdr.Name] = string(data)
	}

	return entries
}
