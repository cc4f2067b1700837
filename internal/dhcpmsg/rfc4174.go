package dhcpmsg

import (
	"encoding/binary"
	"net/netip"
)

// ISNS is the decoded form of option 83 (RFC 4174): the iSNS servers a
// client should register with plus their discovery-domain heartbeat/ESI
// parameters.
type ISNS struct {
	Flags       uint16
	HeartBeat   uint32
	ESIInterval uint32
	Servers     []netip.Addr
}

// Encode returns the option 83 wire payload.
func (i ISNS) Encode() []byte {
	buf := make([]byte, 10, 10+len(i.Servers)*4)
	binary.BigEndian.PutUint16(buf[0:], i.Flags)
	binary.BigEndian.PutUint32(buf[2:], i.HeartBeat)
	binary.BigEndian.PutUint32(buf[6:], i.ESIInterval)

	for _, a := range i.Servers {
		b := a.As4()
		buf = append(buf, b[:]...)
	}

	return buf
}

// DecodeISNS decodes an option 83 payload.
func DecodeISNS(data []byte) (ISNS, error) {
	if len(data) < 10 {
		return ISNS{}, ErrBadOptionLength
	}

	rest := data[10:]
	if len(rest)%4 != 0 {
		return ISNS{}, ErrBadOptionLength
	}

	i := ISNS{
		Flags:       binary.BigEndian.Uint16(data[0:]),
		HeartBeat:   binary.BigEndian.Uint32(data[2:]),
		ESIInterval: binary.BigEndian.Uint32(data[6:]),
	}

	for off := 0; off < len(rest); off += 4 {
		i.Servers = append(i.Servers, netip.AddrFrom4([4]byte(rest[off:off+4])))
	}

	return i, nil
}
