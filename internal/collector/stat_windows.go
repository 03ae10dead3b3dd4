//go:build windows

package collector

import (
	"os"
	"syscall"
	"time"
)

func (HostStat) Stat(path string) (Times, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Times{}, err
	}
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		mod := info.ModTime()
		return Times{Created: mod, Modified: mod, Accessed: mod}, nil
	}
	return Times{
		Created:  time.Unix(0, data.CreationTime.Nanoseconds()),
		Modified: time.Unix(0, data.LastWriteTime.Nanoseconds()),
		Accessed: time.Unix(0, data.LastAccessTime.Nanoseconds()),
	}, nil
}
