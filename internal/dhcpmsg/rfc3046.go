package dhcpmsg

// Relay Agent Information (option 82, RFC 3046) sub-option codes.
const (
	RAICircuitID byte = 1
	RAIRemoteID  byte = 2
)

// RelayAgentInfo is the decoded form of option 82.  Extra preserves any
// sub-options beyond circuit-id and remote-id, keyed by sub-option code, so
// a round trip never loses relay-specific data the core doesn't interpret.
type RelayAgentInfo struct {
	CircuitID []byte
	RemoteID  []byte
	Extra     map[byte][]byte
}

// Encode returns the option 82 wire payload.
func (r RelayAgentInfo) Encode() []byte {
	var buf []byte
	if r.CircuitID != nil {
		buf = appendOption(buf, RAICircuitID, r.CircuitID)
	}

	if r.RemoteID != nil {
		buf = appendOption(buf, RAIRemoteID, r.RemoteID)
	}

	for code, v := range r.Extra {
		buf = appendOption(buf, code, v)
	}

	return buf
}

// DecodeRelayAgentInfo decodes an option 82 payload: a nested sequence of
// TLV sub-options, same shape as the outer option area but without pad/end
// codes or option-52 overload semantics.
func DecodeRelayAgentInfo(data []byte) (RelayAgentInfo, error) {
	r := RelayAgentInfo{Extra: make(map[byte][]byte)}

	for i := 0; i < len(data); {
		if i+1 >= len(data) {
			return RelayAgentInfo{}, ErrBadOptionLength
		}

		code := data[i]
		length := int(data[i+1])
		start := i + 2
		end := start + length
		if end > len(data) {
			return RelayAgentInfo{}, ErrBadOptionLength
		}

		value := data[start:end]
		switch code {
		case RAICircuitID:
			r.CircuitID = value
		case RAIRemoteID:
			r.RemoteID = value
		default:
			r.Extra[code] = value
		}

		i = end
	}

	return r, nil
}

// GetRelayAgentInfo reads and decodes option 82 from p.
func (p *Packet) GetRelayAgentInfo() (RelayAgentInfo, error) {
	v, ok := p.Options[OptRelayAgentInfo]
	if !ok {
		return RelayAgentInfo{}, ErrNoSuchOption
	}

	return DecodeRelayAgentInfo(v)
}

// SetRelayAgentInfo stores r as option 82.
func (p *Packet) SetRelayAgentInfo(r RelayAgentInfo) {
	p.Options[OptRelayAgentInfo] = r.Encode()
}
