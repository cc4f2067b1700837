//go:build !linux

package netlink

import "fmt"

// openL2 always fails outside linux: no portable raw-AF_PACKET equivalent
// is wired, so the response interface is treated as absent and transmission
// mode (4) falls back to (3) per spec.md §4.2.
func openL2(ifaceName string) (l2Sender, error) {
	return nil, fmt.Errorf("netlink: raw L2 send is not supported on this platform")
}
