package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/AdguardTeam/golibs/logutil/slogutil"

	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
	"github.com/flan/staticdhcpd/internal/netlink"
)

// Server drives an Engine off a bound [netlink.Conn]: it decodes each
// received datagram, hands it to [Engine.Handle], encodes the response, and
// picks its transmission path via [netlink.ChooseMode].
type Server struct {
	engine *Engine
	conn   *netlink.Conn
	logger *slog.Logger
}

// NewServer returns a Server driving e over conn.
func NewServer(e *Engine, conn *netlink.Conn, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{engine: e, conn: conn, logger: logger}
}

// Serve reads and handles requests arriving on the server port
// ([netlink.Conn.Receive]) until ctx is canceled. The proxy socket, when
// bound, is not read.
func (s *Server) Serve(ctx context.Context) error {
	buf := make([]byte, 65536)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		r, err := s.conn.Receive(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		s.handleOne(ctx, r)
	}
}

// RunTicker calls Engine.Tick roughly once a second until ctx is canceled,
// driving the suspender's score decay.
func (s *Server) RunTicker(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.engine.Tick()
		}
	}
}

func (s *Server) handleOne(ctx context.Context, r netlink.Request) {
	req, err := dhcpmsg.Decode(r.Data)
	if err != nil {
		s.logger.DebugContext(ctx, "decoding request", slogutil.KeyError, err, "source", r.SourceIP)

		return
	}

	if req.Op != dhcpmsg.OpRequest {
		return
	}

	meta := backend.Meta{
		MessageType: req.MessageType(),
		CIAddr:      req.CIAddr,
		RelayIP:     req.GIAddr,
		Port:        r.ReceivedOnPort,
	}

	resp := s.engine.Handle(ctx, req, meta)
	if resp == nil {
		return
	}

	s.transmit(ctx, resp)
}

func (s *Server) transmit(ctx context.Context, resp *dhcpmsg.Packet) {
	maxSize := s.engine.conf.MaxMessageSize
	if maxSize == 0 {
		maxSize = dhcpmsg.DefaultMaxPayload
	}

	data, dropped, err := dhcpmsg.Encode(resp, maxSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "encoding response", slogutil.KeyError, err)

		return
	}

	if len(dropped) > 0 {
		s.logger.WarnContext(ctx, "dropped options under mtu pressure", "codes", dropped)
	}

	mode := netlink.ChooseMode(resp, s.conn.HaveL2())

	switch mode {
	case netlink.ModeUnicastRelay:
		err = s.conn.SendUnicastRelay(data, resp.GIAddr)
	case netlink.ModeUnicastClient:
		err = s.conn.SendUnicastClient(data, resp.CIAddr)
	case netlink.ModeL2Unicast:
		err = s.conn.SendL2Unicast(data, resp.CHAddr, resp.YIAddr)
	default:
		err = s.conn.SendBroadcast(data)
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "sending response", slogutil.KeyError, err, "mode", int(mode))
	}
}
