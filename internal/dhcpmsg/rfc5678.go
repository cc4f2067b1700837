package dhcpmsg

import "net/netip"

// MoSIPv4Entry is one enterprise's server list within option 139 (RFC 5678).
type MoSIPv4Entry struct {
	Enterprise uint32
	Servers    []netip.Addr
}

// DecodeMoSIPv4(data) decodes option 139.
func DecodeMoSIPv4(data []byte) ([]MoSIPv4Entry, error) {
	var entries []MoSIPv4Entry

	err := forEachVIEntry(data, func(enterprise uint32, payload []byte) error {
		if len(payload)%4 != 0 {
			return ErrBadOptionLength
		}

		var servers []netip.Addr
		for off := 0; off < len(payload); off += 4 {
			servers = append(servers, netip.AddrFrom4([4]byte(payload[off:off+4])))
		}

		entries = append(entries, MoSIPv4Entry{Enterprise: enterprise, Servers: servers})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// EncodeMoSIPv4 returns the option 139 wire payload for entries.
func EncodeMoSIPv4(entries []MoSIPv4Entry) []byte {
	var buf []byte
	for _, e := range entries {
		var payload []byte
		for _, a := range e.Servers {
			b := a.As4()
			payload = append(payload, b[:]...)
		}

		buf = appendVIEntry(buf, e.Enterprise, payload)
	}

	return buf
}

// MoSFQDNEntry is one enterprise's server-name list within option 140.
type MoSFQDNEntry struct {
	Enterprise uint32
	Names      []string
}

// DecodeMoSFQDN decodes option 140.
func DecodeMoSFQDN(data []byte) ([]MoSFQDNEntry, error) {
	var entries []MoSFQDNEntry

	err := forEachVIEntry(data, func(enterprise uint32, payload []byte) error {
		names, err := decodeDomainList(payload)
		if err != nil {
			return err
		}

		entries = append(entries, MoSFQDNEntry{Enterprise: enterprise, Names: names})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// EncodeMoSFQDN returns the option 140 wire payload for entries.
func EncodeMoSFQDN(entries []MoSFQDNEntry) []byte {
	var buf []byte
	for _, e := range entries {
		buf = appendVIEntry(buf, e.Enterprise, encodeDomainNames(e.Names))
	}

	return buf
}
