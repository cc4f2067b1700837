// Package backend defines the contract between the engine and an external
// source of per-client configuration: the Backend interface and the
// Definition it produces. Concrete backends (SQL, HTTP, Redis, flat file,
// ...) are deliberately not part of this module; embedders supply their own
// implementation of Backend.
package backend

import (
	"context"
	"net/netip"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
)

// Definition is the administrator-authored record of what a given MAC
// should receive. It is immutable after construction: resolvers, caches and
// the engine all hand around copies or shared read-only references, never
// mutating one in place.
type Definition struct {
	// IP is the address to lease. Required.
	IP netip.Addr

	// LeaseTime is how long the lease is valid for. Required.
	LeaseTime time.Duration

	Hostname          string
	Gateways          []netip.Addr
	SubnetMask        netip.Addr
	BroadcastAddress  netip.Addr
	DomainName        string
	DomainNameServers []netip.Addr
	NTPServers        []netip.Addr

	// Subnet is an opaque tag identifying which subnet this definition
	// belongs to, meaningful only to the Backend and to hooks.
	Subnet string

	// Serial lets a Backend version a Definition (for example, the row
	// revision it was read from) so that hooks and logs can tell two
	// lookups of the same MAC apart after an update.
	Serial int64

	// Extra is a bag of site-specific fields a Backend or hook may use;
	// the engine never interprets it.
	Extra map[string]any
}

// Clone returns a deep-enough copy of d for a cache to store independent of
// the Backend's own Definition, so that a later mutation by the Backend (if
// any) never leaks into a value already handed out.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}

	clone := *d
	clone.Gateways = append([]netip.Addr(nil), d.Gateways...)
	clone.DomainNameServers = append([]netip.Addr(nil), d.DomainNameServers...)
	clone.NTPServers = append([]netip.Addr(nil), d.NTPServers...)

	if d.Extra != nil {
		clone.Extra = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			clone.Extra[k] = v
		}
	}

	return &clone
}

// Validate reports whether d satisfies the invariants a Backend's result
// must meet: a valid IP and a positive lease time, and at most three DNS
// and three NTP servers (the conventional DHCP option-size ceiling).
func (d *Definition) Validate() (err error) {
	switch {
	case d == nil:
		return errors.ErrNoValue
	case !d.IP.IsValid() || !d.IP.Is4():
		return errInvalidIP
	case d.LeaseTime <= 0:
		return errInvalidLeaseTime
	case len(d.DomainNameServers) > 3:
		return errTooManyDNSServers
	case len(d.NTPServers) > 3:
		return errTooManyNTPServers
	default:
		return nil
	}
}

const (
	errInvalidIP         errors.Error = "definition: IP is required and must be IPv4"
	errInvalidLeaseTime  errors.Error = "definition: lease time must be positive"
	errTooManyDNSServers errors.Error = "definition: more than 3 domain name servers"
	errTooManyNTPServers errors.Error = "definition: more than 3 NTP servers"
)

// ErrBackendUnavailable is a sentinel a Backend may wrap to tell the engine
// the failure is transient and a persistent cache fallback should be tried.
const ErrBackendUnavailable errors.Error = "backend: unavailable"

// Meta carries the request context a Backend or hook may need beyond the
// client's MAC address.
type Meta struct {
	MessageType byte
	CIAddr      netip.Addr
	RelayIP     netip.Addr
	Port        uint16
}

// Backend is the contract a resolver consumes. Implementations must be safe
// for concurrent use: Lookup is called from any worker goroutine handling a
// request for that MAC.
type Backend interface {
	// Lookup returns the Definitions known for mac. Zero, one, or more than
	// one Definition is a legal result; more than one is resolved by a
	// filter hook before the engine proceeds. A nil, nil return means
	// "unknown MAC", not an error.
	Lookup(ctx context.Context, mac dhcpmsg.MAC, meta Meta) ([]*Definition, error)

	// Reinitialise is called on a reload control event. Implementations
	// that maintain their own internal cache or connection pool should
	// refresh it; implementations that have none may no-op.
	Reinitialise(ctx context.Context) error
}
