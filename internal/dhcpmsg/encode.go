package dhcpmsg

import (
	"encoding/binary"
	"net/netip"
	"slices"
)

// MinEncodedLen is the minimum length an encoded packet is padded to, per
// the BOOTP convention some relays still enforce.
const MinEncodedLen = 300

// DefaultMaxPayload is 1500 (typical Ethernet MTU) minus Ethernet, IPv4 and
// UDP header overhead, used as the default budget before the option-52
// overload relocation pass kicks in.
const DefaultMaxPayload = 1500 - 14 - 20 - 8

// requiredOptions must never be dropped by the MTU-pressure fallback.
var requiredOptions = map[byte]bool{
	OptDHCPMessageType:    true,
	OptServerIdentifier:   true,
	OptIPAddressLeaseTime: true,
	OptRenewalTimeT1:      true,
	OptRebindingTimeT2:    true,
}

// Encode serializes p.  maxPayload bounds the size of the whole encoded
// message; when the fixed header, options and End byte would exceed it, the
// option-52 overload relocation (and, failing that, largest-option-drop)
// fallback engages.  A value of 0 disables both and only the 300-byte pad
// floor applies. dropped lists the codes of any options removed under MTU
// pressure, for the caller to log.
func Encode(p *Packet, maxPayload int) (data []byte, dropped []byte, err error) {
	codes := optionCodes(p.Options)

	fileBytes := []byte(p.File)
	snameBytes := []byte(p.SName)
	var overload byte

	if maxPayload > 0 {
		// The option area gets what the fixed header and End byte leave.
		optBudget := maxPayload - FixedHeaderLen - 1
		codes, overload, fileBytes, snameBytes, dropped = relocate(p.Options, codes, optBudget)
	}

	buf := make([]byte, FixedHeaderLen)
	buf[offOp] = p.Op
	buf[offHType] = p.HType
	buf[offHLen] = p.HLen
	buf[offHops] = p.Hops
	binary.BigEndian.PutUint32(buf[offXid:], p.Xid)
	binary.BigEndian.PutUint16(buf[offSecs:], p.Secs)
	binary.BigEndian.PutUint16(buf[offFlags:], p.Flags)
	putAddr(buf[offCIAddr:], p.CIAddr)
	putAddr(buf[offYIAddr:], p.YIAddr)
	putAddr(buf[offSIAddr:], p.SIAddr)
	putAddr(buf[offGIAddr:], p.GIAddr)
	copy(buf[offCHAddr:offCHAddr+chaddrLen], p.CHAddr)
	copy(buf[offSName:offSName+snameLen], snameBytes)
	copy(buf[offFile:offFile+fileLen], fileBytes)
	copy(buf[offCookie:offCookie+4], MagicCookie[:])

	if overload != 0 {
		buf = appendOption(buf, OptOptionOverload, []byte{overload})
	}

	for _, code := range codes {
		buf = appendOption(buf, code, p.Options[code])
	}

	buf = append(buf, OptEnd)

	if len(buf) < MinEncodedLen {
		buf = append(buf, make([]byte, MinEncodedLen-len(buf))...)
	}

	return buf, dropped, nil
}

// optionCodes returns the option codes present in opts in encode order:
// code 53 first (some clients in the wild depend on this placement), then
// ascending.
func optionCodes(opts map[byte][]byte) []byte {
	codes := make([]byte, 0, len(opts))
	for code := range opts {
		if code == OptPad || code == OptEnd {
			continue
		}
		codes = append(codes, code)
	}

	slices.SortFunc(codes, func(a, b byte) int {
		switch {
		case a == OptDHCPMessageType:
			return -1
		case b == OptDHCPMessageType:
			return 1
		default:
			return int(a) - int(b)
		}
	})

	return codes
}

// relocate implements the MTU-pressure fallback: first it moves options 66
// and 67 into the sname/file fields (signalling via option 52), then, if
// still over budget, it repeatedly drops the largest non-required option.
func relocate(
	opts map[byte][]byte,
	codes []byte,
	maxPayload int,
) (kept []byte, overload byte, fileBytes, snameBytes []byte, dropped []byte) {
	kept = slices.Clone(codes)

	size := func(cs []byte) int {
		n := 0
		for _, c := range cs {
			n += optionWireLen(len(opts[c]))
		}

		return n
	}

	if size(kept) > maxPayload {
		if v, ok := opts[OptBootfileName]; ok && len(v) < fileLen {
			fileBytes = v
			overload |= overloadFile
			kept = removeCode(kept, OptBootfileName)
		}

		if v, ok := opts[OptTFTPServerName]; ok && len(v) < snameLen {
			snameBytes = v
			overload |= overloadSName
			kept = removeCode(kept, OptTFTPServerName)
		}
	}

	budget := maxPayload
	if overload != 0 {
		budget -= optionWireLen(1)
	}

	for size(kept) > budget {
		victim, ok := largestDroppable(opts, kept)
		if !ok {
			break
		}

		idx := slices.Index(kept, victim)
		kept = slices.Delete(kept, idx, idx+1)
		dropped = append(dropped, victim)
	}

	return kept, overload, fileBytes, snameBytes, dropped
}

// largestDroppable returns the non-required option in codes with the
// largest encoded payload.  ok is false if every option in codes is
// required.
func largestDroppable(opts map[byte][]byte, codes []byte) (victim byte, ok bool) {
	best := -1
	for _, c := range codes {
		if requiredOptions[c] {
			continue
		}

		if n := len(opts[c]); n > best {
			best = n
			victim = c
			ok = true
		}
	}

	return victim, ok
}

func removeCode(codes []byte, code byte) []byte {
	idx := slices.Index(codes, code)
	if idx < 0 {
		return codes
	}

	return slices.Delete(codes, idx, idx+1)
}

// optionWireLen is the number of bytes a single option contributes to the
// wire, accounting for RFC 3396 splitting of payloads longer than 255
// bytes across multiple same-code TLVs.
func optionWireLen(payloadLen int) int {
	if payloadLen == 0 {
		return 2
	}

	n := 0
	for remaining := payloadLen; remaining > 0; {
		chunk := min(remaining, 255)
		n += 2 + chunk
		remaining -= chunk
	}

	return n
}

// appendOption appends code's TLV encoding of value to buf, splitting value
// across multiple same-code TLVs per RFC 3396 if it exceeds 255 bytes.
func appendOption(buf []byte, code byte, value []byte) []byte {
	if len(value) == 0 {
		return append(buf, code, 0)
	}

	for remaining := value; len(remaining) > 0; {
		chunk := remaining
		if len(chunk) > 255 {
			chunk = chunk[:255]
		}

		buf = append(buf, code, byte(len(chunk)))
		buf = append(buf, chunk...)
		remaining = remaining[len(chunk):]
	}

	return buf
}

func putAddr(b []byte, a netip.Addr) {
	if !a.IsValid() {
		return
	}

	a4 := a.As4()
	copy(b[:4], a4[:])
}
