package dhcpmsg

// DomainSearchList implements RFC 3397 (option 119): an ordered list of
// domain suffixes encoded as RFC 1035 labels with suffix compression.
type DomainSearchList struct {
	Domains []string
}

// Encode returns the option 119 wire payload for dsl.
func (dsl DomainSearchList) Encode() []byte {
	return encodeDomainNames(dsl.Domains)
}

// DecodeDomainSearchList decodes an option 119 payload.
func DecodeDomainSearchList(data []byte) (DomainSearchList, error) {
	domains, err := decodeDomainList(data)
	if err != nil {
		return DomainSearchList{}, err
	}

	return DomainSearchList{Domains: domains}, nil
}

// GetDomainSearchList reads and decodes option 119 from p.
func (p *Packet) GetDomainSearchList() (DomainSearchList, error) {
	v, ok := p.Options[OptDomainSearch]
	if !ok {
		return DomainSearchList{}, ErrNoSuchOption
	}

	return DecodeDomainSearchList(v)
}

// SetDomainSearchList stores dsl as option 119.
func (p *Packet) SetDomainSearchList(dsl DomainSearchList) {
	p.Options[OptDomainSearch] = dsl.Encode()
}
