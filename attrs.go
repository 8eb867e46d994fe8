package vfskit

import "time"

// FileAttributes is the attribute bitfield attached to files and
// directories. Backends may ignore bits they cannot store but must not fail
// on them.
type FileAttributes uint32

const (
	AttrReadOnly          FileAttributes = 0x0001
	AttrHidden            FileAttributes = 0x0002
	AttrSystem            FileAttributes = 0x0004
	AttrDirectory         FileAttributes = 0x0010
	AttrArchive           FileAttributes = 0x0020
	AttrDevice            FileAttributes = 0x0040
	AttrNormal            FileAttributes = 0x0080
	AttrTemporary         FileAttributes = 0x0100
	AttrSparseFile        FileAttributes = 0x0200
	AttrReparsePoint      FileAttributes = 0x0400
	AttrCompressed        FileAttributes = 0x0800
	AttrOffline           FileAttributes = 0x1000
	AttrNotContentIndexed FileAttributes = 0x2000
	AttrEncrypted         FileAttributes = 0x4000
)

// Has reports whether all bits of flag are set.
func (a FileAttributes) Has(flag FileAttributes) bool { return a&flag == flag }

// NotifyFilters selects which kinds of changes a watcher reports.
type NotifyFilters uint32

const (
	NotifyFileName      NotifyFilters = 0x001
	NotifyDirectoryName NotifyFilters = 0x002
	NotifyAttributes    NotifyFilters = 0x004
	NotifySize          NotifyFilters = 0x008
	NotifyLastWrite     NotifyFilters = 0x010
	NotifyLastAccess    NotifyFilters = 0x020
	NotifyCreationTime  NotifyFilters = 0x040
	NotifySecurity      NotifyFilters = 0x100

	// NotifyDefault is the default set a fresh watcher reports.
	NotifyDefault = NotifyLastWrite | NotifyFileName | NotifyDirectoryName
)

// FileOpenMode selects how OpenFile treats an existing or missing file.
type FileOpenMode int

const (
	// OpenModeCreateNew creates a new file and fails when it already exists.
	OpenModeCreateNew FileOpenMode = iota
	// OpenModeCreate creates a new file, truncating any existing one.
	OpenModeCreate
	// OpenModeOpen opens an existing file and fails when it is missing.
	OpenModeOpen
	// OpenModeOpenOrCreate opens an existing file or creates a missing one.
	OpenModeOpenOrCreate
	// OpenModeTruncate opens an existing file and empties it.
	OpenModeTruncate
	// OpenModeAppend opens or creates a file positioned at its end.
	OpenModeAppend
)

// FileAccess selects the requested stream capabilities.
type FileAccess int

const (
	AccessRead      FileAccess = 1
	AccessWrite     FileAccess = 2
	AccessReadWrite FileAccess = AccessRead | AccessWrite
)

// CanRead reports whether the access includes reading.
func (a FileAccess) CanRead() bool { return a&AccessRead != 0 }

// CanWrite reports whether the access includes writing.
func (a FileAccess) CanWrite() bool { return a&AccessWrite != 0 }

// FileShare declares what concurrent access other openers may have.
type FileShare int

const (
	ShareNone      FileShare = 0
	ShareRead      FileShare = 1
	ShareWrite     FileShare = 2
	ShareReadWrite FileShare = ShareRead | ShareWrite
	ShareDelete    FileShare = 4
)

// SearchTarget narrows EnumeratePaths to files, directories, or both.
type SearchTarget int

const (
	SearchBoth SearchTarget = iota
	SearchFile
	SearchDirectory
)

// DefaultFileTime is the sentinel timestamp returned for the creation, last
// access and last write times of paths that do not exist.
var DefaultFileTime = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.Local)
