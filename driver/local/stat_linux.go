//go:build linux

package local

import (
	"syscall"
	"time"
)

func statAccessTime(stat *syscall.Stat_t) time.Time {
	return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
}

// statBirthTime reports no birth time on Linux: the standard Stat_t does not
// include it, and statx() requires kernel 4.11+ plus filesystem support.
func statBirthTime(stat *syscall.Stat_t) time.Time {
	return time.Time{}
}
