package dhcpmsg

import "net/netip"

// DecodeBCMCSDomainNames decodes option 88 (RFC 4280): a suffix-compressed
// RFC 1035 domain name list identifying BCMCS controllers by name.
func DecodeBCMCSDomainNames(data []byte) ([]string, error) {
	return decodeDomainList(data)
}

// EncodeBCMCSDomainNames returns the option 88 wire payload for domains.
func EncodeBCMCSDomainNames(domains []string) []byte {
	return encodeDomainNames(domains)
}

// GetBCMCSDomainNames reads and decodes option 88 from p.
func (p *Packet) GetBCMCSDomainNames() ([]string, error) {
	v, ok := p.Options[OptBCMCSDomainNames]
	if !ok {
		return nil, ErrNoSuchOption
	}

	return DecodeBCMCSDomainNames(v)
}

// SetBCMCSDomainNames stores domains as option 88.
func (p *Packet) SetBCMCSDomainNames(domains []string) {
	p.Options[OptBCMCSDomainNames] = EncodeBCMCSDomainNames(domains)
}

// GetBCMCSAddresses reads option 89, the address-list sibling of option 88.
func (p *Packet) GetBCMCSAddresses() ([]netip.Addr, error) {
	return p.GetIPv4List(OptBCMCSAddresses)
}
