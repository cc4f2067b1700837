//go:build unix

package netlink

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// broadcastCtrl is set as the net.ListenConfig.Control for the server
// socket so it can send to 255.255.255.255, matching the way ISC dhcpd and
// every other production DHCP server configures its broadcast socket.
func broadcastCtrl(_, _ string, c syscall.RawConn) (err error) {
	cerr := c.Control(func(fd uintptr) {
		err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
		if err != nil {
			err = os.NewSyscallError("setsockopt", err)
		}
	})

	if err == nil {
		err = cerr
	}

	return err
}
