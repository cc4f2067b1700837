package dhcpmsg

import "encoding/binary"

// VIVendorClassEntry is one enterprise's entry within option 124.
type VIVendorClassEntry struct {
	Enterprise uint32
	Data       []byte
}

// VIVendorClass is the decoded form of option 124 (RFC 3925): a list of
// per-enterprise opaque class identifiers.
type VIVendorClass struct {
	Entries []VIVendorClassEntry
}

// Encode returns the option 124 wire payload.
func (c VIVendorClass) Encode() []byte {
	var buf []byte
	for _, e := range c.Entries {
		buf = appendVIEntry(buf, e.Enterprise, e.Data)
	}

	return buf
}

// DecodeVIVendorClass decodes an option 124 payload.
func DecodeVIVendorClass(data []byte) (VIVendorClass, error) {
	var c VIVendorClass

	err := forEachVIEntry(data, func(enterprise uint32, payload []byte) error {
		c.Entries = append(c.Entries, VIVendorClassEntry{Enterprise: enterprise, Data: payload})

		return nil
	})
	if err != nil {
		return VIVendorClass{}, err
	}

	return c, nil
}

// VIVendorSpecificEntry is one enterprise's entry within option 125: its
// payload is itself a TLV stream of enterprise-specific sub-options.
type VIVendorSpecificEntry struct {
	Enterprise uint32
	SubOptions map[byte][]byte
}

// VIVendorSpecific is the decoded form of option 125 (RFC 3925).
type VIVendorSpecific struct {
	Entries []VIVendorSpecificEntry
}

// Encode returns the option 125 wire payload.
func (v VIVendorSpecific) Encode() []byte {
	var buf []byte
	for _, e := range v.Entries {
		var sub []byte
		for code, val := range e.SubOptions {
			sub = appendOption(sub, code, val)
		}

		buf = appendVIEntry(buf, e.Enterprise, sub)
	}

	return buf
}

// DecodeVIVendorSpecific decodes an option 125 payload.
func DecodeVIVendorSpecific(data []byte) (VIVendorSpecific, error) {
	var v VIVendorSpecific

	err := forEachVIEntry(data, func(enterprise uint32, payload []byte) error {
		subs, err := decodeNestedTLV(payload)
		if err != nil {
			return err
		}

		v.Entries = append(v.Entries, VIVendorSpecificEntry{Enterprise: enterprise, SubOptions: subs})

		return nil
	})
	if err != nil {
		return VIVendorSpecific{}, err
	}

	return v, nil
}

func appendVIEntry(buf []byte, enterprise uint32, payload []byte) []byte {
	hdr := make([]byte, 5)
	binary.BigEndian.PutUint32(hdr, enterprise)
	hdr[4] = byte(len(payload))

	buf = append(buf, hdr...)

	return append(buf, payload...)
}

func forEachVIEntry(data []byte, fn func(enterprise uint32, payload []byte) error) error {
	for i := 0; i < len(data); {
		if i+5 > len(data) {
			return ErrBadOptionLength
		}

		enterprise := binary.BigEndian.Uint32(data[i:])
		length := int(data[i+4])
		start := i + 5
		end := start + length
		if end > len(data) {
			return ErrBadOptionLength
		}

		if err := fn(enterprise, data[start:end]); err != nil {
			return err
		}

		i = end
	}

	return nil
}

// decodeNestedTLV decodes a generic (code, length, value) TLV stream with no
// pad/end/overload semantics, as used by the per-enterprise sub-option area
// of option 125.
func decodeNestedTLV(data []byte) (map[byte][]byte, error) {
	out := make(map[byte][]byte)

	for i := 0; i < len(data); {
		if i+1 >= len(data) {
			return nil, ErrBadOptionLength
		}

		code := data[i]
		length := int(data[i+1])
		start := i + 2
		end := start + length
		if end > len(data) {
			return nil, ErrBadOptionLength
		}

		out[code] = data[start:end]
		i = end
	}

	return out, nil
}
