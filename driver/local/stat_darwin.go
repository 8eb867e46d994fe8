//go:build darwin

package local

import (
	"syscall"
	"time"
)

func statAccessTime(stat *syscall.Stat_t) time.Time {
	return time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec)
}

// statBirthTime extracts the birth time; macOS has Birthtimespec natively.
func statBirthTime(stat *syscall.Stat_t) time.Time {
	return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
}
