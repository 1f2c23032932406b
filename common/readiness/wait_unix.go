//go:build unix

package readiness

import (
	"context"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const pollReady = unix.POLLIN | unix.POLLHUP | unix.POLLERR

func waitFD(ctx context.Context, fd int, slice time.Duration) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		timeout := slice
		if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
			if remaining := time.Until(deadline); remaining < timeout {
				timeout = remaining
			}
		}
		if timeout < time.Millisecond {
			timeout = time.Millisecond
		}
		n, err := unix.Poll(fds, int(timeout/time.Millisecond))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return os.NewSyscallError("poll", err)
		}
		if n > 0 && fds[0].Revents&unix.POLLNVAL != 0 {
			return os.NewSyscallError("poll", unix.EBADF)
		}
		if n > 0 && fds[0].Revents&pollReady != 0 {
			return nil
		}
	}
}
