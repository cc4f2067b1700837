// Package resolver implements the MAC-to-Definition resolution pipeline:
// a Backend (optionally fronted by a Cache) lookup, multi-match
// disambiguation via a hook, and an unknown-MAC fallback via another hook.
package resolver

import (
	"context"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
	"github.com/flan/staticdhcpd/internal/hooks"
)

// ErrUnknown is returned when no Definition could be produced for a MAC:
// the Backend returned none and HandleUnknownMAC declined to synthesize
// one.
const ErrUnknown errors.Error = "resolver: unknown MAC"

// ErrBadClient is returned when Hooks.FilterDefinitions rejects a
// multi-match result instead of reducing it.
const ErrBadClient errors.Error = "resolver: bad client"

// Resolver glues a Backend to the two hooks that handle the multi-match and
// unknown-MAC edge cases.
type Resolver struct {
	Backend backend.Backend
	Hooks   hooks.Hooks
}

// New returns a Resolver over be, dispatching ambiguous and unknown results
// through h.
func New(be backend.Backend, h hooks.Hooks) *Resolver {
	return &Resolver{Backend: be, Hooks: h}
}

// Resolve implements the algorithm of spec.md §4.5: look the MAC up, let
// FilterDefinitions narrow a multi-match, let HandleUnknownMAC synthesize a
// result for a MAC the Backend doesn't know, and otherwise report Unknown.
func (r *Resolver) Resolve(
	ctx context.Context,
	req *dhcpmsg.Packet,
	mac dhcpmsg.MAC,
	meta backend.Meta,
) (*backend.Definition, error) {
	candidates, err := r.Backend.Lookup(ctx, mac, meta)
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		def := r.Hooks.HandleUnknownMAC(ctx, req, mac, meta)
		if def == nil {
			return nil, ErrUnknown
		}

		return def, nil

	case 1:
		return candidates[0], nil

	default:
		def := r.Hooks.FilterDefinitions(ctx, candidates, meta)
		if def == nil {
			return nil, ErrBadClient
		}

		return def, nil
	}
}
