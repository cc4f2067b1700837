package dhcpmsg

import (
	"encoding/binary"
	"net/netip"
)

// IsOption reports whether code is present in the packet.
func (p *Packet) IsOption(code byte) bool {
	_, ok := p.Options[code]

	return ok
}

// IsRequestedOption reports whether code appears in the client's parameter
// request list (option 55).  It is meaningless on anything but a
// client-to-server packet, but is safe to call regardless.
func (p *Packet) IsRequestedOption(code byte) bool {
	prl, ok := p.Options[OptParameterRequest]
	if !ok {
		return false
	}

	for _, c := range prl {
		if c == code {
			return true
		}
	}

	return false
}

// DeleteOption removes code from the packet, if present.
func (p *Packet) DeleteOption(code byte) {
	delete(p.Options, code)
}

// GetIPv4 returns the single IPv4 address stored at code.
func (p *Packet) GetIPv4(code byte) (netip.Addr, error) {
	v, err := p.rawOption(code, TypeIPv4)
	if err != nil {
		return netip.Addr{}, err
	}

	if len(v) != 4 {
		return netip.Addr{}, ErrWrongType
	}

	return netip.AddrFrom4([4]byte(v)), nil
}

// SetIPv4 stores a as a single IPv4-valued option.
func (p *Packet) SetIPv4(code byte, a netip.Addr) bool {
	if !a.Is4() && !a.Is4In6() {
		return false
	}

	b := a.As4()
	p.Options[code] = b[:]

	return true
}

// GetIPv4List returns one or more IPv4 addresses stored at code.
func (p *Packet) GetIPv4List(code byte) ([]netip.Addr, error) {
	v, ok := p.Options[code]
	if !ok {
		return nil, ErrNoSuchOption
	}

	if len(v) == 0 || len(v)%4 != 0 {
		return nil, ErrWrongType
	}

	out := make([]netip.Addr, 0, len(v)/4)
	for i := 0; i < len(v); i += 4 {
		out = append(out, netip.AddrFrom4([4]byte(v[i:i+4])))
	}

	return out, nil
}

// SetIPv4List stores addrs as a multi-valued IPv4 option.  It returns false
// (rather than an error) if addrs is empty and the registry entry for code
// requires at least one address.
func (p *Packet) SetIPv4List(code byte, addrs []netip.Addr) bool {
	if info, ok := Registry[code]; ok && info.Type == TypeIPv4Plus && len(addrs) == 0 {
		return false
	}

	buf := make([]byte, 0, len(addrs)*4)
	for _, a := range addrs {
		b := a.As4()
		buf = append(buf, b[:]...)
	}

	p.Options[code] = buf

	return true
}

// GetString returns the option's payload interpreted as an opaque string.
func (p *Packet) GetString(code byte) (string, error) {
	v, ok := p.Options[code]
	if !ok {
		return "", ErrNoSuchOption
	}

	return string(v), nil
}

// SetString stores s as code's payload.
func (p *Packet) SetString(code byte, s string) {
	p.Options[code] = []byte(s)
}

// GetByte returns a single-octet option's value.
func (p *Packet) GetByte(code byte) (byte, error) {
	v, err := p.rawOption(code, TypeByte)
	if err != nil {
		return 0, err
	}

	if len(v) != 1 {
		return 0, ErrWrongType
	}

	return v[0], nil
}

// SetByte stores v as a single-octet option.
func (p *Packet) SetByte(code byte, v byte) {
	p.Options[code] = []byte{v}
}

// GetBool returns a one-octet boolean option's value.
func (p *Packet) GetBool(code byte) (bool, error) {
	v, err := p.GetByte(code)
	if err != nil {
		return false, err
	}

	return v != 0, nil
}

// SetBool stores v as a one-octet boolean option.
func (p *Packet) SetBool(code byte, v bool) {
	if v {
		p.Options[code] = []byte{1}
	} else {
		p.Options[code] = []byte{0}
	}
}

// GetU16 returns a two-byte, network-byte-order option's value.
func (p *Packet) GetU16(code byte) (uint16, error) {
	v, ok := p.Options[code]
	if !ok {
		return 0, ErrNoSuchOption
	}

	if len(v) != 2 {
		return 0, ErrWrongType
	}

	return binary.BigEndian.Uint16(v), nil
}

// SetU16 stores v as a two-byte, network-byte-order option.
func (p *Packet) SetU16(code byte, v uint16) {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	p.Options[code] = buf
}

// GetU32 returns a four-byte, network-byte-order option's value.
func (p *Packet) GetU32(code byte) (uint32, error) {
	v, ok := p.Options[code]
	if !ok {
		return 0, ErrNoSuchOption
	}

	if len(v) != 4 {
		return 0, ErrWrongType
	}

	return binary.BigEndian.Uint32(v), nil
}

// SetU32 stores v as a four-byte, network-byte-order option.
func (p *Packet) SetU32(code byte, v uint32) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	p.Options[code] = buf
}

// rawOption fetches code's raw payload, verifying the registry agrees it is
// of the expected type when the code is registered.
func (p *Packet) rawOption(code byte, want PayloadType) ([]byte, error) {
	v, ok := p.Options[code]
	if !ok {
		return nil, ErrNoSuchOption
	}

	if info, known := Registry[code]; known && info.Type != want {
		return nil, ErrWrongType
	}

	return v, nil
}
