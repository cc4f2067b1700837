//go:build !unix

package netlink

import "syscall"

// broadcastCtrl is a no-op outside unix: non-unix platforms in this module
// are best-effort only, matching transmit_other.go's L2 stub.
func broadcastCtrl(_, _ string, _ syscall.RawConn) error {
	return nil
}
