package model

import "time"

// Entry is a single item of a directory listing.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	Mode    uint32
	ModTime time.Time
}

// MountPoint is a mounted filesystem as reported by the OS.
type MountPoint struct {
	Device string
	Path   string
	FSType string
}
