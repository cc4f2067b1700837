package dhcpmsg

import "net/netip"

// Op values for the fixed op field.
const (
	OpRequest byte = 1
	OpReply   byte = 2
)

// MagicCookie is the four bytes that must follow the fixed BOOTP header in
// every DHCP (as opposed to plain BOOTP) packet.
var MagicCookie = [4]byte{0x63, 0x82, 0x53, 0x63}

// BroadcastFlag is bit 15 of the flags field, the only semantic bit.
const BroadcastFlag uint16 = 0x8000

// FixedHeaderLen is the length, in bytes, of everything up to and including
// the magic cookie: the minimum a buffer must carry to be decodable.
const FixedHeaderLen = 236 + len(MagicCookie)

// Packet is the mutable, in-memory representation of a DHCP message.  It is
// created on receive, mutated by the engine and by the load hook, serialized
// exactly once, and then dropped.
type Packet struct {
	Op     byte
	HType  byte
	HLen   byte
	Hops   byte
	Xid    uint32
	Secs   uint16
	Flags  uint16
	CIAddr netip.Addr
	YIAddr netip.Addr
	SIAddr netip.Addr
	GIAddr netip.Addr

	// CHAddr is the client hardware address.  Only the first HLen bytes are
	// significant; Decode stores only those bytes, and Encode writes the
	// field into the 16-byte chaddr area, zero-padded.
	CHAddr MAC

	// SName and File are the legacy BOOTP server-name and boot-file fields.
	// Either or both may be repurposed to carry overflow options per the
	// option 52 overload mechanism; Options always reflects the logical,
	// reassembled view regardless of where a value physically lived on the
	// wire.
	SName string
	File  string

	// Options maps option code to its raw, decoded payload.  Codes 0 (pad)
	// and 255 (end) are never stored here.
	Options map[byte][]byte

	// Meta carries implementation-internal, hop-to-hop data (such as which
	// socket a packet arrived on) that must never be serialized onto the
	// wire.
	Meta map[string]any
}

// NewPacket returns a Packet with its maps initialized and Op defaulted to a
// reply, ready for the engine to populate.
func NewPacket() *Packet {
	return &Packet{
		Op:      OpReply,
		HType:   1, // Ethernet
		HLen:    6,
		Options: make(map[byte][]byte),
		Meta:    make(map[string]any),
	}
}

// IsBroadcast reports whether the broadcast bit is set in Flags.
func (p *Packet) IsBroadcast() bool {
	return p.Flags&BroadcastFlag != 0
}

// MessageType returns the value of option 53, or 0 if the packet carries
// none (which makes it a plain BOOTP packet rather than a valid DHCP one).
func (p *Packet) MessageType() byte {
	v, ok := p.Options[OptDHCPMessageType]
	if !ok || len(v) != 1 {
		return 0
	}

	return v[0]
}
