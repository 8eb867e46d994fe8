package vfskit

// ChangeKind identifies what happened to a watched path.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeDeleted
	ChangeChanged
	ChangeRenamed
)

// String returns a short name for the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeDeleted:
		return "deleted"
	case ChangeChanged:
		return "changed"
	case ChangeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileChangedEvent describes a single change observed by a watcher.
type FileChangedEvent struct {
	// FS is the backend the event originated from.
	FS FileSystem
	// Kind is what happened.
	Kind ChangeKind
	// FullPath is the absolute path of the affected file or directory.
	FullPath UPath
}

// Name returns the final name of the affected path.
func (e FileChangedEvent) Name() string { return e.FullPath.Name() }

// FileRenamedEvent describes a rename, carrying both the old and new paths.
type FileRenamedEvent struct {
	FileChangedEvent
	// OldFullPath is the absolute path the entry had before the rename.
	OldFullPath UPath
}

// OldName returns the final name of the path before the rename.
func (e FileRenamedEvent) OldName() string { return e.OldFullPath.Name() }
