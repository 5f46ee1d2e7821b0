package conventions

import "path/filepath"

const (
	// ConfigDir is the configuration directory (relative to home).
	ConfigDir = ".config/corvus"
	// DataDir is the state directory (relative to home).
	DataDir = ".local/share/corvus"

	// ConfigFile is the configuration filename.
	ConfigFile = "config.yaml"
	// DBFile is the session database filename.
	DBFile = "corvus.db"
)

// ConfigFilePath returns the default configuration file path for a home
// directory.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(homeDir, filepath.FromSlash(ConfigDir), ConfigFile)
}

// DBFilePath returns the default session database path for a home directory.
func DBFilePath(homeDir string) string {
	return filepath.Join(homeDir, filepath.FromSlash(DataDir), DBFile)
}
