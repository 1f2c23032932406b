package control

import (
	"syscall"

	E "github.com/sagernet/sing-conn/common/exceptions"
)

// Raw runs block against the descriptor of conn and merges the error of
// block with the error of acquiring the descriptor.
func Raw(conn syscall.RawConn, block func(fd uintptr) error) error {
	var innerErr error
	err := conn.Control(func(fd uintptr) {
		innerErr = block(fd)
	})
	return E.Errors(innerErr, err)
}

func Conn(conn syscall.Conn, block func(fd uintptr) error) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	return Raw(rawConn, block)
}

// FD returns the descriptor number of conn. The descriptor stays owned by
// conn and is only valid while conn is open.
func FD(conn syscall.Conn) (int, error) {
	var rawFD int
	err := Conn(conn, func(fd uintptr) error {
		rawFD = int(fd)
		return nil
	})
	if err != nil {
		return -1, err
	}
	return rawFD, nil
}
