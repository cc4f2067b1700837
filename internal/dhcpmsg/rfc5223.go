package dhcpmsg

// DecodeLoSTServer decodes option 137 (RFC 5223): a single, possibly
// suffix-compressed, domain name identifying a LoST (Location-to-Service
// Translation) server.
func DecodeLoSTServer(data []byte) (string, error) {
	name, _, err := decodeOneName(data, 0, 0)

	return name, err
}

// EncodeLoSTServer returns the option 137 wire payload for name.
func EncodeLoSTServer(name string) []byte {
	return encodeDomainNames([]string{name})
}

// GetLoSTServer reads and decodes option 137 from p.
func (p *Packet) GetLoSTServer() (string, error) {
	v, ok := p.Options[OptLoSTServer]
	if !ok {
		return "", ErrNoSuchOption
	}

	return DecodeLoSTServer(v)
}

// SetLoSTServer stores name as option 137.
func (p *Packet) SetLoSTServer(name string) {
	p.Options[OptLoSTServer] = EncodeLoSTServer(name)
}
