// Package hooks defines the synchronous extension points the engine and
// resolver call out to, and a panic-safe wrapper so a misbehaving hook can never
// bring the engine down.
package hooks

import (
	"context"
	"log/slog"
	"net/netip"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
)

// Verdict is the result of a filtering decision.
type Verdict int

const (
	// Accept processes the request normally.
	Accept Verdict = iota
	// Reject treats the request as if the source were misbehaving.
	Reject
	// Ignore silently drops the request without marking the source.
	Ignore
)

// Hooks are the four user-callable extension points: Filter,
// FilterDefinitions, HandleUnknownMAC and Load. [None] implements each at
// its documented default (Filter: Accept, FilterDefinitions: first
// candidate, HandleUnknownMAC: none, Load: Accept).
type Hooks interface {
	// Filter runs before resolution and may accept, reject or silently
	// ignore the request.
	Filter(
		ctx context.Context,
		req *dhcpmsg.Packet,
		mac dhcpmsg.MAC,
		meta backend.Meta,
	) Verdict

	// FilterDefinitions reduces a multi-match Backend result to at most
	// one Definition.
	FilterDefinitions(
		ctx context.Context,
		candidates []*backend.Definition,
		meta backend.Meta,
	) *backend.Definition

	// HandleUnknownMAC may synthesize a Definition for a MAC the Backend
	// does not know. Returning nil leaves the MAC unknown.
	HandleUnknownMAC(
		ctx context.Context,
		req *dhcpmsg.Packet,
		mac dhcpmsg.MAC,
		meta backend.Meta,
	) *backend.Definition

	// Load is called once the response packet has been fully constructed.
	// It may mutate resp in place (for example to add PXE options) and
	// may veto transmission by returning false.
	Load(
		ctx context.Context,
		resp *dhcpmsg.Packet,
		mac dhcpmsg.MAC,
		def *backend.Definition,
		relayIP netip.Addr,
		port uint16,
	) bool
}

// None is a [Hooks] implementation with every extension point at its
// documented default: Filter always Accept, HandleUnknownMAC always nil,
// Load always true.
type None struct{}

var _ Hooks = None{}

// Filter implements [Hooks] for None.
func (None) Filter(context.Context, *dhcpmsg.Packet, dhcpmsg.MAC, backend.Meta) Verdict {
	return Accept
}

// FilterDefinitions implements [Hooks] for None. It keeps the first
// candidate, since the engine has already established there are at least
// two and some deterministic choice beats refusing the request outright.
func (None) FilterDefinitions(_ context.Context, candidates []*backend.Definition, _ backend.Meta) *backend.Definition {
	if len(candidates) == 0 {
		return nil
	}

	return candidates[0]
}

// HandleUnknownMAC implements [Hooks] for None.
func (None) HandleUnknownMAC(context.Context, *dhcpmsg.Packet, dhcpmsg.MAC, backend.Meta) *backend.Definition {
	return nil
}

// Load implements [Hooks] for None.
func (None) Load(context.Context, *dhcpmsg.Packet, dhcpmsg.MAC, *backend.Definition, netip.Addr, uint16) bool {
	return true
}

// Safe wraps an inner Hooks so that a panic inside any extension point is
// recovered, logged, and converted into the documented panic/exception
// default (Reject for Filter/Load, nil for HandleUnknownMAC/
// FilterDefinitions) instead of propagating into the engine's goroutine.
type Safe struct {
	Inner  Hooks
	Logger *slog.Logger
}

var _ Hooks = (*Safe)(nil)

// Filter implements [Hooks] for Safe.
func (s *Safe) Filter(ctx context.Context, req *dhcpmsg.Packet, mac dhcpmsg.MAC, meta backend.Meta) (v Verdict) {
	v = Reject
	defer s.recover(ctx, "filter")

	return s.Inner.Filter(ctx, req, mac, meta)
}

// FilterDefinitions implements [Hooks] for Safe.
func (s *Safe) FilterDefinitions(
	ctx context.Context,
	candidates []*backend.Definition,
	meta backend.Meta,
) (d *backend.Definition) {
	defer s.recover(ctx, "filter_definitions")

	return s.Inner.FilterDefinitions(ctx, candidates, meta)
}

// HandleUnknownMAC implements [Hooks] for Safe.
func (s *Safe) HandleUnknownMAC(
	ctx context.Context,
	req *dhcpmsg.Packet,
	mac dhcpmsg.MAC,
	meta backend.Meta,
) (d *backend.Definition) {
	defer s.recover(ctx, "handle_unknown_mac")

	return s.Inner.HandleUnknownMAC(ctx, req, mac, meta)
}

// Load implements [Hooks] for Safe.
func (s *Safe) Load(
	ctx context.Context,
	resp *dhcpmsg.Packet,
	mac dhcpmsg.MAC,
	def *backend.Definition,
	relayIP netip.Addr,
	port uint16,
) (ok bool) {
	ok = false
	defer s.recover(ctx, "load")

	return s.Inner.Load(ctx, resp, mac, def, relayIP, port)
}

// recover catches a panic from the named hook point, logs it, and leaves
// the named return value at the caller's pre-set deny default.
func (s *Safe) recover(ctx context.Context, point string) {
	if r := recover(); r != nil {
		s.Logger.ErrorContext(ctx, "hook panicked", "hook", point, slogutil.KeyError, r)
	}
}
