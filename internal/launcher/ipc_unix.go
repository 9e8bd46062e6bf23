//go:build unix

package launcher

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// newChannel creates the socket pair node uses for process.send. The child
// end is handed over through exec.Cmd.ExtraFiles.
func newChannel() (parent *os.File, child *os.File, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("socketpair: %w", err)
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])

	return os.NewFile(uintptr(fds[0]), "ipc-parent"), os.NewFile(uintptr(fds[1]), "ipc-child"), nil
}
