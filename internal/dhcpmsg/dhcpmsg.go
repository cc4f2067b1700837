// Package dhcpmsg implements the RFC 2131 / RFC 2132 DHCPv4 wire format: the
// fixed-header packet representation, a registry-driven typed option
// accessor layer, and the RFC-specific sub-codecs for options that carry
// structured payloads.
package dhcpmsg

import "net"

// MAC is a six-octet Ethernet hardware address.  It is a thin alias over
// [net.HardwareAddr] so that canonical formatting, hex parsing and byte
// conversion come from the standard library rather than a hand-rolled type.
type MAC = net.HardwareAddr

// ParseMAC parses s, which may use colon, dash or no separators, into a MAC.
func ParseMAC(s string) (MAC, error) {
	if mac, err := net.ParseMAC(s); err == nil {
		return mac, nil
	}

	// net.ParseMAC rejects bare hex ("aabbccddeeff"); accept it by
	// re-inserting colons every two characters.
	if len(s) == 12 {
		buf := make([]byte, 0, 17)
		for i := 0; i < 12; i += 2 {
			if i > 0 {
				buf = append(buf, ':')
			}
			buf = append(buf, s[i], s[i+1])
		}

		return net.ParseMAC(string(buf))
	}

	return nil, &net.AddrError{Err: "invalid MAC address", Addr: s}
}
