package dhcpmsg

import "net/netip"

// ClasslessRoute is a single entry of RFC 3442 (option 121): a destination
// prefix and the gateway to reach it through.  The all-zeros /0 prefix is
// legal and denotes the default route.
type ClasslessRoute struct {
	Dest    netip.Prefix
	Gateway netip.Addr
}

// EncodeClasslessRoutes returns the option 121 wire payload for routes.
func EncodeClasslessRoutes(routes []ClasslessRoute) []byte {
	var buf []byte
	for _, r := range routes {
		bits := r.Dest.Bits()
		if bits < 0 {
			bits = 0
		}

		significant := (bits + 7) / 8
		addr := r.Dest.Addr().As4()
		gw := r.Gateway.As4()

		buf = append(buf, byte(bits))
		buf = append(buf, addr[:significant]...)
		buf = append(buf, gw[:]...)
	}

	return buf
}

// DecodeClasslessRoutes decodes an option 121 payload.
func DecodeClasslessRoutes(data []byte) ([]ClasslessRoute, error) {
	var routes []ClasslessRoute

	for pos := 0; pos < len(data); {
		bits := int(data[pos])
		if bits > 32 {
			return nil, ErrWrongType
		}

		significant := (bits + 7) / 8
		need := 1 + significant + 4
		if pos+need > len(data) {
			return nil, ErrBadOptionLength
		}

		var destBytes [4]byte
		copy(destBytes[:], data[pos+1:pos+1+significant])

		var gwBytes [4]byte
		copy(gwBytes[:], data[pos+1+significant:pos+1+significant+4])

		routes = append(routes, ClasslessRoute{
			Dest:    netip.PrefixFrom(netip.AddrFrom4(destBytes), bits),
			Gateway: netip.AddrFrom4(gwBytes),
		})

		pos += need
	}

	return routes, nil
}

// GetClasslessRoutes reads and decodes option 121 from p.
func (p *Packet) GetClasslessRoutes() ([]ClasslessRoute, error) {
	v, ok := p.Options[OptClasslessStaticRoute]
	if !ok {
		return nil, ErrNoSuchOption
	}

	return DecodeClasslessRoutes(v)
}

// SetClasslessRoutes stores routes as option 121.
func (p *Packet) SetClasslessRoutes(routes []ClasslessRoute) {
	p.Options[OptClasslessStaticRoute] = EncodeClasslessRoutes(routes)
}
