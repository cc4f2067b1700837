package dhcpmsg

import (
	"net/netip"

	"github.com/AdguardTeam/golibs/errors"
)

// sipServerEncoding is the discriminator byte RFC 3361 defines for option
// 120: the server list is exclusively domain names XOR IPv4 addresses,
// never a mix.
const (
	sipServerEncodingName byte = 0
	sipServerEncodingAddr byte = 1
)

// errMixedSIPEncoding is returned by [SIPServers.Encode] when both Names and
// Addrs are non-empty, which RFC 3361 forbids.
const errMixedSIPEncoding errors.Error = "option 120 carries names xor addresses, never both"

// SIPServers is the decoded form of option 120.  Exactly one of Names and
// Addrs is populated.
type SIPServers struct {
	Names []string
	Addrs []netip.Addr
}

// Encode returns the option 120 wire payload.
func (s SIPServers) Encode() ([]byte, error) {
	switch {
	case len(s.Names) > 0 && len(s.Addrs) > 0:
		return nil, errMixedSIPEncoding
	case len(s.Addrs) > 0:
		buf := make([]byte, 1, 1+len(s.Addrs)*4)
		buf[0] = sipServerEncodingAddr
		for _, a := range s.Addrs {
			b := a.As4()
			buf = append(buf, b[:]...)
		}

		return buf, nil
	default:
		return append([]byte{sipServerEncodingName}, encodeDomainNames(s.Names)...), nil
	}
}

// DecodeSIPServers decodes an option 120 payload.
func DecodeSIPServers(data []byte) (SIPServers, error) {
	if len(data) < 1 {
		return SIPServers{}, ErrBadOptionLength
	}

	switch data[0] {
	case sipServerEncodingAddr:
		rest := data[1:]
		if len(rest)%4 != 0 {
			return SIPServers{}, ErrWrongType
		}

		addrs := make([]netip.Addr, 0, len(rest)/4)
		for i := 0; i < len(rest); i += 4 {
			addrs = append(addrs, netip.AddrFrom4([4]byte(rest[i:i+4])))
		}

		return SIPServers{Addrs: addrs}, nil
	case sipServerEncodingName:
		names, err := decodeDomainList(data[1:])
		if err != nil {
			return SIPServers{}, err
		}

		return SIPServers{Names: names}, nil
	default:
		return SIPServers{}, ErrWrongType
	}
}
