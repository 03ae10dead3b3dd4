//go:build linux || darwin || freebsd || netbsd || openbsd

package collector

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// Stat follows symlinks. Created is the inode status-change time, which is
// what these hosts report in place of a creation time.
func (HostStat) Stat(path string) (Times, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Times{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return Times{
		Created:  timespecTime(st.Ctim),
		Modified: timespecTime(st.Mtim),
		Accessed: timespecTime(st.Atim),
	}, nil
}

func timespecTime(ts unix.Timespec) time.Time {
	return time.Unix(ts.Unix())
}
