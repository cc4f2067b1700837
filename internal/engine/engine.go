// Package engine implements the decision matrix that turns one received
// DHCPv4 packet into zero or one response packets: message-type
// classification, REQUEST sub-state refinement, MAC resolution via
// [resolver.Resolver], source suspension via [suspend.Suspender], and the
// three extension points in [hooks.Hooks].
package engine

import (
	"context"
	"log/slog"
	"net/netip"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
	"github.com/flan/staticdhcpd/internal/hooks"
	"github.com/flan/staticdhcpd/internal/resolver"
	"github.com/flan/staticdhcpd/internal/suspend"
)

// reqState is the refined sub-state of a DHCPREQUEST, per RFC 2131 table 4.
type reqState int

const (
	reqStateSelecting reqState = iota
	reqStateInitReboot
	reqStateRenewing
	reqStateRebinding
)

// Config holds the per-engine behavioral knobs of spec.md §4.6/§6.2.
type Config struct {
	// ServerID is presented in option 54 and used to recognize SELECTING
	// requests addressed to this server.
	ServerID netip.Addr

	// Authoritative mirrors the ISC-style "authoritative" directive: when
	// true, the server NAKs a REQUEST from an unknown MAC or for an address
	// other than the Definition's, and a request the Filter hook rejects,
	// instead of staying silent.
	Authoritative bool

	// NAKRenewals, when true, NAKs every RENEWING/REBINDING request so the
	// client falls back to DISCOVER. When false, a renewal that matches the
	// backend's current Definition is ACKed and one that does not is
	// treated like an INIT-REBOOT mismatch.
	NAKRenewals bool

	// MaxMessageSize bounds response encoding the way option 57 would;
	// zero means [dhcpmsg.DefaultMaxPayload].
	MaxMessageSize int
}

// Engine ties together resolution, suspension and hooks into the single
// entry point [Engine.Handle].
type Engine struct {
	conf      Config
	resolver  *resolver.Resolver
	suspender *suspend.Suspender
	hooks     hooks.Hooks
	logger    *slog.Logger

	metrics metrics
}

type metrics struct {
	requests  *prometheus.CounterVec
	responses *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

// New returns an Engine. reg may be nil, in which case metrics are created
// but not registered anywhere.
func New(
	conf Config,
	res *resolver.Resolver,
	susp *suspend.Suspender,
	h hooks.Hooks,
	logger *slog.Logger,
	reg prometheus.Registerer,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		conf:      conf,
		resolver:  res,
		suspender: susp,
		hooks:     h,
		logger:    logger,
		metrics: metrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "staticdhcpd",
				Name:      "requests_total",
				Help:      "Total number of accepted DHCPv4 requests by message type.",
			}, []string{"message_type"}),
			responses: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "staticdhcpd",
				Name:      "responses_total",
				Help:      "Total number of sent DHCPv4 responses by message type.",
			}, []string{"message_type"}),
			dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "staticdhcpd",
				Name:      "dropped_total",
				Help:      "Total number of requests dropped without a response, by reason.",
			}, []string{"reason"}),
		},
	}

	if reg != nil {
		reg.MustRegister(e.metrics.requests, e.metrics.responses, e.metrics.dropped)
	}

	return e
}

// Tick advances the suspender's ~1Hz score decay. Callers are expected to
// invoke it roughly once a second.
func (e *Engine) Tick() {
	e.suspender.Tick()
}

// Reinitialise flushes the resolver's backend (and any fronting cache),
// forcing the next lookup for every MAC to go back to the authoritative
// source. It takes no lock of its own: requests handled concurrently are
// not held back while the backend reinitialises.
func (e *Engine) Reinitialise(ctx context.Context) error {
	return e.resolver.Backend.Reinitialise(ctx)
}

// Handle runs one received packet through the full decision matrix. It
// returns nil if the request must be silently dropped.
func (e *Engine) Handle(ctx context.Context, req *dhcpmsg.Packet, meta backend.Meta) *dhcpmsg.Packet {
	mac := req.CHAddr
	src := suspend.Source{MAC: mac.String(), RelayIP: meta.RelayIP.String()}

	if st := e.suspender.Check(src); st != suspend.Allowed {
		e.drop(ctx, "suspended", mac)

		return nil
	}

	e.suspender.RecordRequest(src)

	mtype := req.MessageType()
	e.metrics.requests.WithLabelValues(messageTypeName(mtype)).Inc()

	switch e.hooks.Filter(ctx, req, mac, meta) {
	case hooks.Reject:
		e.drop(ctx, "hook-reject", mac)
		e.suspender.Block(src)

		return e.maybeNAK(ctx, req, mac, meta)
	case hooks.Ignore:
		e.drop(ctx, "hook-ignore", mac)

		return nil
	case hooks.Accept:
		// Fall through to the decision matrix.
	}

	var resp *dhcpmsg.Packet

	switch mtype {
	case dhcpmsg.MessageTypeDiscover:
		resp = e.handleDiscover(ctx, req, mac, meta, src)
	case dhcpmsg.MessageTypeRequest:
		resp = e.handleRequest(ctx, req, mac, meta, src)
	case dhcpmsg.MessageTypeInform:
		resp = e.handleInform(ctx, req, mac, meta, src)
	case dhcpmsg.MessageTypeDecline:
		e.handleDecline(ctx, req, mac, src)

		return nil
	case dhcpmsg.MessageTypeRelease:
		e.handleRelease(ctx, req, mac)

		return nil
	default:
		e.drop(ctx, "unhandled-message-type", mac)

		return nil
	}

	if resp == nil {
		return nil
	}

	return e.finalize(ctx, resp, mac, meta)
}

func (e *Engine) drop(ctx context.Context, reason string, mac dhcpmsg.MAC) {
	e.metrics.dropped.WithLabelValues(reason).Inc()
	e.logger.DebugContext(ctx, "dropping request", "reason", reason, "mac", mac)
}

// maybeNAK returns a NAK built from req if the server is authoritative,
// otherwise nil (silence).
func (e *Engine) maybeNAK(ctx context.Context, req *dhcpmsg.Packet, mac dhcpmsg.MAC, meta backend.Meta) *dhcpmsg.Packet {
	if !e.conf.Authoritative {
		return nil
	}

	resp := e.newNAK(req)

	return e.finalize(ctx, resp, mac, meta)
}

func (e *Engine) resolve(
	ctx context.Context,
	req *dhcpmsg.Packet,
	mac dhcpmsg.MAC,
	meta backend.Meta,
	src suspend.Source,
) (*backend.Definition, bool) {
	def, err := e.resolver.Resolve(ctx, req, mac, meta)
	if err != nil {
		e.suspender.BlockUnauthorized(src)
		e.logger.DebugContext(ctx, "resolving mac", slogutil.KeyError, err, "mac", mac)

		return nil, false
	}

	return def, true
}

func (e *Engine) handleDiscover(
	ctx context.Context,
	req *dhcpmsg.Packet,
	mac dhcpmsg.MAC,
	meta backend.Meta,
	src suspend.Source,
) *dhcpmsg.Packet {
	def, ok := e.resolve(ctx, req, mac, meta, src)
	if !ok {
		e.drop(ctx, "unknown-mac-discover", mac)

		return nil
	}

	return e.newResponse(req, dhcpmsg.MessageTypeOffer, def)
}

func (e *Engine) handleRequest(
	ctx context.Context,
	req *dhcpmsg.Packet,
	mac dhcpmsg.MAC,
	meta backend.Meta,
	src suspend.Source,
) *dhcpmsg.Packet {
	state, reqIP, ok := classifyRequest(req, e.conf.ServerID)
	if !ok {
		e.drop(ctx, "malformed-request", mac)

		return nil
	}

	def, known := e.resolve(ctx, req, mac, meta, src)

	switch state {
	case reqStateSelecting:
		if !known {
			if e.conf.Authoritative {
				return e.newNAK(req)
			}

			e.drop(ctx, "selecting-unknown-mac", mac)

			return nil
		}

		if def.IP != reqIP {
			return e.newNAK(req)
		}

		return e.newResponse(req, dhcpmsg.MessageTypeACK, def)

	case reqStateInitReboot:
		if !known || def.IP != reqIP {
			if e.conf.Authoritative {
				return e.newNAK(req)
			}

			e.drop(ctx, "init-reboot-unverifiable", mac)

			return nil
		}

		return e.newResponse(req, dhcpmsg.MessageTypeACK, def)

	case reqStateRenewing, reqStateRebinding:
		if e.conf.NAKRenewals {
			return e.newNAK(req)
		}

		if !known || def.IP != reqIP {
			if e.conf.Authoritative {
				return e.newNAK(req)
			}

			e.drop(ctx, "renewal-unverifiable", mac)

			return nil
		}

		return e.newResponse(req, dhcpmsg.MessageTypeACK, def)
	}

	return nil
}

func (e *Engine) handleInform(
	ctx context.Context,
	req *dhcpmsg.Packet,
	mac dhcpmsg.MAC,
	meta backend.Meta,
	src suspend.Source,
) *dhcpmsg.Packet {
	def, ok := e.resolve(ctx, req, mac, meta, src)
	if !ok {
		e.drop(ctx, "unknown-mac-inform", mac)

		return nil
	}

	resp := e.newResponse(req, dhcpmsg.MessageTypeACK, def)
	// DHCPINFORM ACKs carry configuration only: no address was assigned,
	// so yiaddr and the lease timers are meaningless here.
	resp.YIAddr = netip.Addr{}
	resp.DeleteOption(dhcpmsg.OptIPAddressLeaseTime)
	resp.DeleteOption(dhcpmsg.OptRenewalTimeT1)
	resp.DeleteOption(dhcpmsg.OptRebindingTimeT2)

	return resp
}

func (e *Engine) handleDecline(ctx context.Context, req *dhcpmsg.Packet, mac dhcpmsg.MAC, src suspend.Source) {
	reqIP, err := req.GetIPv4(dhcpmsg.OptRequestedIPAddress)
	if err != nil {
		reqIP = netip.Addr{}
	}

	e.logger.WarnContext(ctx, "client declined address", "mac", mac, "ip", reqIP)
	e.suspender.Block(src)
}

func (e *Engine) handleRelease(ctx context.Context, req *dhcpmsg.Packet, mac dhcpmsg.MAC) {
	e.logger.DebugContext(ctx, "client released address", "mac", mac, "ciaddr", req.CIAddr)
}

// classifyRequest refines a DHCPREQUEST into the sub-state RFC 2131 table 4
// names and extracts the address the client is asserting.
func classifyRequest(req *dhcpmsg.Packet, serverID netip.Addr) (state reqState, reqIP netip.Addr, ok bool) {
	srvID, srvErr := req.GetIPv4(dhcpmsg.OptServerIdentifier)
	hasSrvID := srvErr == nil

	wantIP, reqErr := req.GetIPv4(dhcpmsg.OptRequestedIPAddress)
	hasReqIP := reqErr == nil

	ciaddr := req.CIAddr

	switch {
	case hasSrvID && srvID.IsValid() && !srvID.IsUnspecified():
		if serverID.IsValid() && srvID != serverID {
			return 0, netip.Addr{}, false
		}

		if !hasReqIP {
			return 0, netip.Addr{}, false
		}

		return reqStateSelecting, wantIP, true

	case hasReqIP && wantIP.IsValid() && !wantIP.IsUnspecified():
		return reqStateInitReboot, wantIP, true

	case ciaddr.IsValid() && !ciaddr.IsUnspecified():
		if req.IsBroadcast() {
			return reqStateRebinding, ciaddr, true
		}

		return reqStateRenewing, ciaddr, true

	default:
		return 0, netip.Addr{}, false
	}
}

func messageTypeName(t byte) string {
	switch t {
	case dhcpmsg.MessageTypeDiscover:
		return "discover"
	case dhcpmsg.MessageTypeOffer:
		return "offer"
	case dhcpmsg.MessageTypeRequest:
		return "request"
	case dhcpmsg.MessageTypeDecline:
		return "decline"
	case dhcpmsg.MessageTypeACK:
		return "ack"
	case dhcpmsg.MessageTypeNAK:
		return "nak"
	case dhcpmsg.MessageTypeRelease:
		return "release"
	case dhcpmsg.MessageTypeInform:
		return "inform"
	default:
		return "unknown"
	}
}
