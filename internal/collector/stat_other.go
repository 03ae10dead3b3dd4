//go:build !(linux || darwin || freebsd || netbsd || openbsd || windows)

package collector

import "os"

// Stat reports the modification time for all three timestamps on hosts
// without a richer status query.
func (HostStat) Stat(path string) (Times, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Times{}, err
	}
	mod := info.ModTime()
	return Times{Created: mod, Modified: mod, Accessed: mod}, nil
}
