package dhcpmsg

import (
	"bytes"
	"encoding/binary"
	"net/netip"
	"strings"
)

// field byte offsets within the fixed 236-byte BOOTP header.
const (
	offOp     = 0
	offHType  = 1
	offHLen   = 2
	offHops   = 3
	offXid    = 4
	offSecs   = 8
	offFlags  = 10
	offCIAddr = 12
	offYIAddr = 16
	offSIAddr = 20
	offGIAddr = 24
	offCHAddr = 28
	offSName  = 44
	offFile   = 108
	offCookie = 236

	chaddrLen = 16
	snameLen  = 64
	fileLen   = 128
)

// overload bits, option 52.
const (
	overloadFile  = 1 << 0
	overloadSName = 1 << 1
)

// Decode parses data into a Packet.  It requires at least [FixedHeaderLen]
// bytes and a valid magic cookie.  Options are parsed TLV-style; a code-52
// overload causes the parser to continue reading options out of the file
// and/or sname fields, in that order.  Duplicate option codes are tolerated:
// the first occurrence wins and later ones are silently dropped.
func Decode(data []byte) (*Packet, error) {
	if len(data) < FixedHeaderLen {
		return nil, ErrTruncated
	}

	if !cookieMatches(data[offCookie : offCookie+4]) {
		return nil, ErrBadMagic
	}

	p := NewPacket()
	p.Op = data[offOp]
	p.HType = data[offHType]
	p.HLen = data[offHLen]
	p.Hops = data[offHops]
	p.Xid = binary.BigEndian.Uint32(data[offXid:])
	p.Secs = binary.BigEndian.Uint16(data[offSecs:])
	p.Flags = binary.BigEndian.Uint16(data[offFlags:])
	p.CIAddr = addrFromBytes(data[offCIAddr:])
	p.YIAddr = addrFromBytes(data[offYIAddr:])
	p.SIAddr = addrFromBytes(data[offSIAddr:])
	p.GIAddr = addrFromBytes(data[offGIAddr:])

	hlen := int(p.HLen)
	if hlen > chaddrLen {
		hlen = chaddrLen
	}
	p.CHAddr = append(MAC(nil), data[offCHAddr:offCHAddr+hlen]...)

	sname := data[offSName : offSName+snameLen]
	file := data[offFile : offFile+fileLen]

	overload, err := parseOptions(p.Options, data[offCookie+4:])
	if err != nil {
		return nil, err
	}

	if overload&overloadFile != 0 {
		if _, err = parseOptions(p.Options, file); err != nil {
			return nil, err
		}
	} else {
		p.File = cstring(file)
	}

	if overload&overloadSName != 0 {
		if _, err = parseOptions(p.Options, sname); err != nil {
			return nil, err
		}
	} else {
		p.SName = cstring(sname)
	}

	return p, nil
}

// parseOptions reads TLV-encoded options from buf into dst, stopping at code
// 255 or when buf is exhausted.  It returns the value of option 52
// (overload) if one was seen in this region, 0 otherwise.  Codes already
// present in dst are left untouched (first occurrence wins).
func parseOptions(dst map[byte][]byte, buf []byte) (overload byte, err error) {
	for i := 0; i < len(buf); {
		code := buf[i]
		if code == OptEnd {
			return overload, nil
		}
		if code == OptPad {
			i++

			continue
		}

		if i+1 >= len(buf) {
			return overload, ErrBadOptionLength
		}

		length := int(buf[i+1])
		start := i + 2
		end := start + length
		if end > len(buf) {
			return overload, ErrBadOptionLength
		}

		if _, exists := dst[code]; !exists {
			dst[code] = append([]byte(nil), buf[start:end]...)
		}

		if code == OptOptionOverload && length == 1 {
			overload = buf[start]
		}

		i = end
	}

	return overload, nil
}

func cookieMatches(b []byte) bool {
	return b[0] == MagicCookie[0] && b[1] == MagicCookie[1] &&
		b[2] == MagicCookie[2] && b[3] == MagicCookie[3]
}

func addrFromBytes(b []byte) netip.Addr {
	return netip.AddrFrom4([4]byte{b[0], b[1], b[2], b[3]})
}

// cstring trims a NUL-padded fixed-size field down to its meaningful prefix.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return strings.Clone(string(b))
}
