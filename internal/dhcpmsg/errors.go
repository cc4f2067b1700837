package dhcpmsg

import "github.com/AdguardTeam/golibs/errors"

const (
	// ErrTruncated is returned when the input is shorter than the fixed
	// header plus magic cookie.
	ErrTruncated errors.Error = "packet truncated"

	// ErrBadMagic is returned when the four bytes following the fixed
	// header do not match the DHCP magic cookie.
	ErrBadMagic errors.Error = "bad magic cookie"

	// ErrBadOptionLength is returned when an option's length byte claims
	// more data than remains in the buffer.
	ErrBadOptionLength errors.Error = "option length overruns buffer"

	// ErrNoSuchOption is returned by a typed getter when the requested
	// option is absent.
	ErrNoSuchOption errors.Error = "no such option"

	// ErrWrongType is returned by a typed getter when the option is present
	// but its registry type does not match the accessor used, or its payload
	// length does not fit that type.
	ErrWrongType errors.Error = "option has a different registry type"
)
