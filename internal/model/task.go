package model

import (
	"time"
)

// TaskOp identifies the filesystem mutation a task performs.
type TaskOp string

const (
	// TaskOpCopy copies a file to a destination path.
	TaskOpCopy TaskOp = "copy"
	// TaskOpMove renames/moves a file or directory.
	TaskOpMove TaskOp = "move"
	// TaskOpDelete removes a file or directory (recursively for directories).
	TaskOpDelete TaskOp = "delete"
	// TaskOpCreateFile creates an empty file.
	TaskOpCreateFile TaskOp = "create-file"
	// TaskOpCreateDirectory creates a single directory.
	TaskOpCreateDirectory TaskOp = "create-directory"
	// TaskOpChmod changes the permission bits of a path.
	TaskOpChmod TaskOp = "chmod"
	// TaskOpChown changes the owner of a path through an external privileged process.
	TaskOpChown TaskOp = "chown"
	// TaskOpUnmount unmounts a mount point through the external unmount utility.
	TaskOpUnmount TaskOp = "unmount"
	// TaskOpArchive packs a set of paths into a single archive file.
	TaskOpArchive TaskOp = "archive"
)

// Archive format tags accepted by archive tasks. Any other value is a
// defined failure at execution time, not a silent default.
const (
	ArchiveFormatZip   = "zip"
	ArchiveFormatTar   = "tar"
	ArchiveFormatTarGz = "tar.gz"
)

// TaskKind is the closed set of operations with their operands. Op selects
// the variant; only the fields of that variant are meaningful. Kinds are
// immutable once a task has been created.
type TaskKind struct {
	Op TaskOp

	// Copy and Move operands.
	Src  string
	Dest string

	// Delete, CreateFile, CreateDirectory, Chmod, Chown and Unmount operand.
	Path string

	// Chmod operand, raw permission bits applied verbatim.
	Mode uint32

	// Chown operand, "user" or "user:group".
	Owner string

	// Archive operands. Dest is shared with Copy/Move.
	Paths  []string
	Format string
}

// TaskState represents the position of a task in its lifecycle.
type TaskState string

const (
	// TaskStatePending indicates the task has been submitted but not dispatched.
	TaskStatePending TaskState = "pending"
	// TaskStateInProgress indicates the task's executor is running.
	TaskStateInProgress TaskState = "in-progress"
	// TaskStateCompleted indicates the task finished successfully.
	TaskStateCompleted TaskState = "completed"
	// TaskStateFailed indicates the task finished with an error.
	TaskStateFailed TaskState = "failed"
)

// TaskStatus is the task state machine value:
// Pending -> InProgress(progress) -> Completed | Failed(reason).
type TaskStatus struct {
	State TaskState
	// Progress in [0.0, 1.0], only meaningful while in progress. Current
	// executors report no intermediate progress, so it stays at 0.0 until
	// the terminal transition.
	Progress float64
	// Reason is the failure reason, only set on failed tasks.
	Reason string
}

// Terminal returns true once the status can no longer change.
func (s TaskStatus) Terminal() bool {
	return s.State == TaskStateCompleted || s.State == TaskStateFailed
}

// Task is a single queued filesystem mutation request. ID, Kind and
// Description are immutable after creation; only Status changes, and only
// through the task manager.
type Task struct {
	ID          string
	Kind        TaskKind
	Status      TaskStatus
	Description string
	CreatedAt   time.Time
}

// ProgressEventType identifies the kind of event an executor emits.
type ProgressEventType string

const (
	// ProgressEventUpdate carries an intermediate progress value.
	ProgressEventUpdate ProgressEventType = "update"
	// ProgressEventCompleted is the successful terminal event.
	ProgressEventCompleted ProgressEventType = "completed"
	// ProgressEventError is the failed terminal event.
	ProgressEventError ProgressEventType = "error"
)

// ProgressEvent is a transient executor report. It is never stored, only
// applied to the originating task and discarded.
type ProgressEvent struct {
	Type     ProgressEventType
	Progress float64
	Message  string
}
