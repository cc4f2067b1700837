package engine

import (
	"context"

	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
)

// newResponse builds an OFFER or ACK for req from def, filling in the
// address and configuration options and deriving the T1/T2 renewal timers
// per RFC 2131 §4.4.1 (T1 = lease/2, T2 = lease·7/8).
func (e *Engine) newResponse(req *dhcpmsg.Packet, msgType byte, def *backend.Definition) *dhcpmsg.Packet {
	resp := dhcpmsg.NewPacket()
	resp.HType = req.HType
	resp.HLen = req.HLen
	resp.Xid = req.Xid
	resp.Flags = req.Flags
	resp.GIAddr = req.GIAddr
	resp.CHAddr = req.CHAddr
	resp.YIAddr = def.IP
	resp.CIAddr = req.CIAddr

	resp.SetByte(dhcpmsg.OptDHCPMessageType, msgType)

	if e.conf.ServerID.IsValid() {
		resp.SetIPv4(dhcpmsg.OptServerIdentifier, e.conf.ServerID)
	}

	leaseSecs := uint32(def.LeaseTime.Seconds())
	resp.SetU32(dhcpmsg.OptIPAddressLeaseTime, leaseSecs)
	resp.SetU32(dhcpmsg.OptRenewalTimeT1, leaseSecs/2)
	resp.SetU32(dhcpmsg.OptRebindingTimeT2, uint32(uint64(leaseSecs)*7/8))

	if def.SubnetMask.IsValid() {
		resp.SetIPv4(dhcpmsg.OptSubnetMask, def.SubnetMask)
	}

	if len(def.Gateways) > 0 {
		resp.SetIPv4List(dhcpmsg.OptRouter, def.Gateways)
	}

	if def.BroadcastAddress.IsValid() {
		resp.SetIPv4(dhcpmsg.OptBroadcastAddress, def.BroadcastAddress)
	}

	if def.DomainName != "" {
		resp.SetString(dhcpmsg.OptDomainName, def.DomainName)
	}

	if len(def.DomainNameServers) > 0 {
		resp.SetIPv4List(dhcpmsg.OptDomainNameServer, def.DomainNameServers)
	}

	if len(def.NTPServers) > 0 {
		resp.SetIPv4List(dhcpmsg.OptNTPServers, def.NTPServers)
	}

	if def.Hostname != "" {
		resp.SetString(dhcpmsg.OptHostName, def.Hostname)
	}

	resp.Meta[metaDefinitionKey] = def

	return resp
}

// metaDefinitionKey stashes the Definition a response was built from in
// [dhcpmsg.Packet.Meta], so finalize can hand it to Hooks.Load without
// threading it through every call site.
const metaDefinitionKey = "definition"

// newNAK builds a minimal DHCPNAK for req per RFC 2131 §4.3.2: yiaddr,
// ciaddr and siaddr are all zero, and only the server identifier and
// message type options are present.
func (e *Engine) newNAK(req *dhcpmsg.Packet) *dhcpmsg.Packet {
	resp := dhcpmsg.NewPacket()
	resp.HType = req.HType
	resp.HLen = req.HLen
	resp.Xid = req.Xid
	resp.GIAddr = req.GIAddr
	resp.CHAddr = req.CHAddr
	// A NAK must be broadcast by a relay if the client can't be trusted to
	// have a working network stack, so always set the flag; direct clients
	// ignore it.
	resp.Flags = dhcpmsg.BroadcastFlag

	resp.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeNAK)

	if e.conf.ServerID.IsValid() {
		resp.SetIPv4(dhcpmsg.OptServerIdentifier, e.conf.ServerID)
	}

	return resp
}

// finalize runs the load hook and records the outgoing message-type
// metric. It returns nil if the hook vetoes the response.
func (e *Engine) finalize(ctx context.Context, resp *dhcpmsg.Packet, mac dhcpmsg.MAC, meta backend.Meta) *dhcpmsg.Packet {
	def, _ := resp.Meta[metaDefinitionKey].(*backend.Definition)

	ok := e.hooks.Load(ctx, resp, mac, def, meta.RelayIP, meta.Port)
	if !ok {
		e.drop(ctx, "hook-load-veto", mac)

		return nil
	}

	e.metrics.responses.WithLabelValues(messageTypeName(resp.MessageType())).Inc()

	return resp
}
