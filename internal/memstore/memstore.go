// Package memstore implements an in-process [backend.Backend] over a flat
// JSON file, keyed by MAC address. It exists as a reference and test
// implementation of the Backend contract, not as a concrete production
// backend: administrators are expected to supply their own, typically
// fronting a database or directory service.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/netip"
	"os"
	"sync"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/google/renameio/v2/maybe"

	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
)

// dataVersion is the version tag of the on-disk record format, so a future
// format change can be detected rather than silently misparsed.
const dataVersion = 1

// filePerm is the permission mode the snapshot file is written with.
const filePerm fs.FileMode = 0o640

// Store is a Backend backed by a MAC-keyed map, optionally persisted to a
// JSON file on every mutation.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	records map[string][]*backend.Definition
}

// Open loads path, if it exists, into a new Store. A nonexistent path is
// not an error: the Store simply starts empty.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		logger:  logger,
		records: make(map[string][]*backend.Definition),
	}

	if err := s.load(); err != nil {
		return nil, errors.Annotate(err, "loading memstore: %w")
	}

	return s, nil
}

// Lookup implements [backend.Backend] for *Store.
func (s *Store) Lookup(_ context.Context, mac dhcpmsg.MAC, _ backend.Meta) ([]*backend.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs, ok := s.records[mac.String()]
	if !ok {
		return nil, nil
	}

	out := make([]*backend.Definition, len(defs))
	for i, d := range defs {
		out[i] = d.Clone()
	}

	return out, nil
}

// Reinitialise implements [backend.Backend] for *Store]. A flat-file store
// has no external cache to refresh, so this is a no-op beyond reloading the
// file in case it was edited out of band.
func (s *Store) Reinitialise(context.Context) error {
	return s.load()
}

// Put replaces the Definitions for mac and persists the store if a path was
// configured.
func (s *Store) Put(mac dhcpmsg.MAC, defs []*backend.Definition) error {
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("definition for %s: %w", mac, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[mac.String()] = defs

	return s.storeLocked()
}

// Remove deletes every Definition for mac and persists the store.
func (s *Store) Remove(mac dhcpmsg.MAC) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, mac.String())

	return s.storeLocked()
}

// record is the on-disk shape of one MAC's Definitions.
type record struct {
	MAC         string       `json:"mac"`
	Definitions []definition `json:"definitions"`
}

// definition is the on-disk shape of one [backend.Definition]. It mirrors
// every field except Extra, which is not persisted. netip.Addr fields use
// their own text (un)marshalers; LeaseTime is stored as a duration string
// such as "30m0s".
type definition struct {
	IP                netip.Addr   `json:"ip"`
	LeaseTime         string       `json:"lease_time"`
	Hostname          string       `json:"hostname,omitempty"`
	Gateways          []netip.Addr `json:"gateways,omitempty"`
	SubnetMask        netip.Addr   `json:"subnet_mask,omitzero"`
	BroadcastAddress  netip.Addr   `json:"broadcast_address,omitzero"`
	DomainName        string       `json:"domain_name,omitempty"`
	DomainNameServers []netip.Addr `json:"domain_name_servers,omitempty"`
	NTPServers        []netip.Addr `json:"ntp_servers,omitempty"`
	Subnet            string       `json:"subnet,omitempty"`
	Serial            int64        `json:"serial,omitempty"`
}

func toDefinition(d *backend.Definition) definition {
	return definition{
		IP:                d.IP,
		LeaseTime:         d.LeaseTime.String(),
		Hostname:          d.Hostname,
		Gateways:          d.Gateways,
		SubnetMask:        d.SubnetMask,
		BroadcastAddress:  d.BroadcastAddress,
		DomainName:        d.DomainName,
		DomainNameServers: d.DomainNameServers,
		NTPServers:        d.NTPServers,
		Subnet:            d.Subnet,
		Serial:            d.Serial,
	}
}

func (d definition) toBackend() (*backend.Definition, error) {
	dur, err := time.ParseDuration(d.LeaseTime)
	if err != nil {
		return nil, fmt.Errorf("parsing lease_time: %w", err)
	}

	return &backend.Definition{
		IP:                d.IP,
		LeaseTime:         dur,
		Hostname:          d.Hostname,
		Gateways:          d.Gateways,
		SubnetMask:        d.SubnetMask,
		BroadcastAddress:  d.BroadcastAddress,
		DomainName:        d.DomainName,
		DomainNameServers: d.DomainNameServers,
		NTPServers:        d.NTPServers,
		Subnet:            d.Subnet,
		Serial:            d.Serial,
	}, nil
}

type dataFile struct {
	Version int      `json:"version"`
	Records []record `json:"records"`
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	var df dataFile
	if err = json.Unmarshal(data, &df); err != nil {
		return fmt.Errorf("decoding memstore: %w", err)
	}

	records := make(map[string][]*backend.Definition, len(df.Records))
	for _, rec := range df.Records {
		defs := make([]*backend.Definition, 0, len(rec.Definitions))
		for i, d := range rec.Definitions {
			def, convErr := d.toBackend()
			if convErr != nil {
				s.logAnnotate(rec.MAC, i, convErr)

				continue
			}

			defs = append(defs, def)
		}

		records[rec.MAC] = defs
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	return nil
}

func (s *Store) logAnnotate(mac string, idx int, err error) {
	if s.logger == nil {
		return
	}

	s.logger.Warn("skipping memstore record", "mac", mac, "idx", idx, "err", err)
}

// storeLocked writes the full table to s.path atomically. Callers must hold
// s.mu for writing.
func (s *Store) storeLocked() error {
	if s.path == "" {
		return nil
	}

	df := dataFile{
		Version: dataVersion,
		Records: make([]record, 0, len(s.records)),
	}

	for mac, defs := range s.records {
		encoded := make([]definition, len(defs))
		for i, d := range defs {
			encoded[i] = toDefinition(d)
		}

		df.Records = append(df.Records, record{MAC: mac, Definitions: encoded})
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		// Don't wrap the error since it's informative enough as is.
		return err
	}

	return maybe.WriteFile(s.path, data, filePerm)
}

var _ backend.Backend = (*Store)(nil)
