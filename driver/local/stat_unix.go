//go:build unix

package local

import (
	"os"
	"syscall"
	"time"
)

// statExtraTimes extracts the access and birth times the portable FileInfo
// does not carry. Either value may be zero when the platform or filesystem
// does not expose it.
func statExtraTimes(info os.FileInfo) (atime, birth time.Time) {
	sys := info.Sys()
	if sys == nil {
		return time.Time{}, time.Time{}
	}
	stat, ok := sys.(*syscall.Stat_t)
	if !ok {
		return time.Time{}, time.Time{}
	}
	return statAccessTime(stat), statBirthTime(stat)
}
