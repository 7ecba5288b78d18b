//go:build unix

package process

import "golang.org/x/sys/unix"

func setPriority(pid, niceness int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid, niceness)
}
