// Package netlink binds the server, client and optional proxy UDP ports,
// receives packets off them, and implements the dual-stack transmitter that
// picks between an L3 unicast send, an L3 broadcast send, and a
// hand-crafted L2 frame per spec.md §4.2.
package netlink

import (
	"net/netip"

	"github.com/flan/staticdhcpd/internal/dhcpmsg"
)

// QTag is one 802.1Q tag in a stack prepended to an L2 frame, outermost
// first.
type QTag struct {
	PCP uint8
	DEI bool
	VID uint16
}

// Config holds the socket-layer configuration consumed by Conn.
type Config struct {
	ServerIP   netip.Addr
	ServerPort uint16 // default 67
	ClientPort uint16 // default 68
	ProxyPort  uint16 // 0 disables the proxy/PXE listener

	// ResponseInterface, if set, is the network interface name an
	// additional raw L2 socket is opened on for path (4) of the
	// transmission choice.
	ResponseInterface string
	ResponseQTags     []QTag
}

// DefaultServerPort and DefaultClientPort are the standard DHCP ports.
const (
	DefaultServerPort uint16 = 67
	DefaultClientPort uint16 = 68
	DefaultProxyPort  uint16 = 4011
)

// Request is a single received datagram together with the metadata needed
// to choose how to answer it.
type Request struct {
	Data           []byte
	SourceIP       netip.Addr
	SourcePort     uint16
	ReceivedOnPort uint16
}

// Mode identifies which of the four transmission paths a response takes.
type Mode int

const (
	// ModeUnicastRelay sends L3-unicast to giaddr:ServerPort.
	ModeUnicastRelay Mode = iota
	// ModeUnicastClient sends L3-unicast to ciaddr:ClientPort.
	ModeUnicastClient
	// ModeBroadcast sends L3-broadcast to 255.255.255.255:ClientPort.
	ModeBroadcast
	// ModeL2Unicast crafts an Ethernet+IP+UDP+DHCP frame addressed
	// directly to the client's hardware address.
	ModeL2Unicast
)

// ChooseMode implements the transmission-choice decision of spec.md §4.2.
// haveL2 reports whether a response interface is configured; when it is
// false, path (4) falls back to (3) as the spec requires.
func ChooseMode(resp *dhcpmsg.Packet, haveL2 bool) Mode {
	switch {
	case resp.GIAddr.IsValid() && !resp.GIAddr.IsUnspecified():
		return ModeUnicastRelay
	case canUnicastToCIAddr(resp):
		return ModeUnicastClient
	case resp.IsBroadcast() || !resp.YIAddr.IsValid() || resp.YIAddr.IsUnspecified():
		return ModeBroadcast
	case haveL2:
		return ModeL2Unicast
	default:
		return ModeBroadcast
	}
}

// canUnicastToCIAddr reports whether resp is an ACK the client may receive
// by unicast to its own ciaddr: an ACK to a RENEW or to an INFORM, both of
// which imply the client already has yiaddr/ciaddr usable for unicast. A
// REBINDING reply carries the broadcast flag (it was broadcast on the wire
// by the client), and RFC 2131 never permits ciaddr-unicast for it, so the
// broadcast-flagged case is excluded here and falls through to
// [ModeBroadcast] instead.
func canUnicastToCIAddr(resp *dhcpmsg.Packet) bool {
	if resp.MessageType() != dhcpmsg.MessageTypeACK {
		return false
	}

	if resp.IsBroadcast() {
		return false
	}

	return resp.CIAddr.IsValid() && !resp.CIAddr.IsUnspecified()
}
