package integration

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

func buildTestBinary(t *testing.T) string {
	t.Helper()

	bin := filepath.Join(t.TempDir(), "corvus-test")
	buildCmd := exec.Command("go", "build", "-o", bin, "../../cmd/corvus")
	out, err := buildCmd.CombinedOutput()
	require.NoError(t, err, string(out))

	return bin
}

func TestArchiveCommand(t *testing.T) {
	bin := buildTestBinary(t)

	setupInputs := func(t *testing.T, dir string) []string {
		src := filepath.Join(dir, "src")
		require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(src, "file1.txt"), []byte("one"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "file2.txt"), []byte("two"), 0644))
		return []string{src}
	}

	tests := map[string]struct {
		format         string
		inputs         func(t *testing.T, dir string) []string
		expErr         bool
		validateOutput func(t *testing.T, archivePath string)
	}{
		"Zip archive stores directory contents without the directory prefix": {
			format: "zip",
			inputs: setupInputs,
			validateOutput: func(t *testing.T, archivePath string) {
				zr, err := zip.OpenReader(archivePath)
				require.NoError(t, err)
				defer zr.Close()

				names := make([]string, 0, len(zr.File))
				for _, f := range zr.File {
					names = append(names, f.Name)
				}
				assert.Contains(t, names, "file1.txt")
				assert.Contains(t, names, "sub/file2.txt")
			},
		},

		"Tar archive keeps the directory name as the top entry": {
			format: "tar",
			inputs: setupInputs,
			validateOutput: func(t *testing.T, archivePath string) {
				f, err := os.Open(archivePath)
				require.NoError(t, err)
				defer f.Close()

				assert.Contains(t, tarEntryNames(t, tar.NewReader(f)), "src/file1.txt")
			},
		},

		"Tar gz archive is readable through gzip": {
			format: "tar.gz",
			inputs: setupInputs,
			validateOutput: func(t *testing.T, archivePath string) {
				f, err := os.Open(archivePath)
				require.NoError(t, err)
				defer f.Close()
				gz, err := gzip.NewReader(f)
				require.NoError(t, err)
				defer gz.Close()

				assert.Contains(t, tarEntryNames(t, tar.NewReader(gz)), "src/sub/file2.txt")
			},
		},

		"Missing inputs fail the command": {
			format: "zip",
			inputs: func(t *testing.T, dir string) []string {
				return []string{filepath.Join(dir, "nonexistent")}
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			inputs := tt.inputs(t, dir)
			archivePath := filepath.Join(dir, "out."+tt.format)

			args := []string{"archive", "--no-log", "--db-path", filepath.Join(dir, "test.db"),
				"--output", archivePath, "--format", tt.format}
			args = append(args, inputs...)

			var stdout, stderr bytes.Buffer
			cmd := exec.Command(bin, args...)
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			err := cmd.Run()

			if tt.expErr {
				assert.Error(t, err, stdout.String())
				return
			}
			require.NoError(t, err, stderr.String())
			assert.Contains(t, stdout.String(), "completed")
			assert.Contains(t, stdout.String(), "Archive written to "+archivePath)
			tt.validateOutput(t, archivePath)
		})
	}
}

func TestArchiveCommandJSONOutput(t *testing.T) {
	bin := buildTestBinary(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0644))
	archivePath := filepath.Join(dir, "out.zip")

	var stdout bytes.Buffer
	cmd := exec.Command(bin, "archive", "--no-log", "--db-path", filepath.Join(dir, "test.db"),
		"--output", archivePath, "--format", "zip", "--json", input)
	cmd.Stdout = &stdout
	require.NoError(t, cmd.Run())

	// The output is a stream: the task list followed by the result message.
	dec := json.NewDecoder(&stdout)

	var items []map[string]interface{}
	require.NoError(t, dec.Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "archive", items[0]["operation"])
	assert.Equal(t, "completed", items[0]["status"])

	var msg map[string]string
	require.NoError(t, dec.Decode(&msg))
	assert.Contains(t, msg["message"], archivePath)
}

func tarEntryNames(t *testing.T, tr *tar.Reader) []string {
	t.Helper()

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}

	return names
}
