package memstore_test

import (
	"context"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
	"github.com/flan/staticdhcpd/internal/memstore"
)

var testMAC = dhcpmsg.MAC{0x0, 0x1, 0x2, 0x3, 0x4, 0x5}

func TestStore_PutLookupRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")

	s, err := memstore.Open(path, nil)
	require.NoError(t, err)

	defs, err := s.Lookup(context.Background(), testMAC, backend.Meta{})
	require.NoError(t, err)
	assert.Nil(t, defs)

	def := &backend.Definition{
		IP:        netip.MustParseAddr("192.0.2.10"),
		LeaseTime: time.Hour,
		Hostname:  "host-a",
	}
	require.NoError(t, s.Put(testMAC, []*backend.Definition{def}))

	got, err := s.Lookup(context.Background(), testMAC, backend.Meta{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, def.IP, got[0].IP)
	assert.Equal(t, def.Hostname, got[0].Hostname)

	require.NoError(t, s.Remove(testMAC))

	got, err = s.Lookup(context.Background(), testMAC, backend.Meta{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")

	s1, err := memstore.Open(path, nil)
	require.NoError(t, err)

	def := &backend.Definition{
		IP:        netip.MustParseAddr("192.0.2.20"),
		LeaseTime: 30 * time.Minute,
	}
	require.NoError(t, s1.Put(testMAC, []*backend.Definition{def}))

	s2, err := memstore.Open(path, nil)
	require.NoError(t, err)

	got, err := s2.Lookup(context.Background(), testMAC, backend.Meta{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, def.IP, got[0].IP)
	assert.Equal(t, def.LeaseTime, got[0].LeaseTime)
}

func TestStore_OpenMissingFileIsNotError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	s, err := memstore.Open(path, nil)
	require.NoError(t, err)

	defs, err := s.Lookup(context.Background(), testMAC, backend.Meta{})
	require.NoError(t, err)
	assert.Nil(t, defs)
}

func TestStore_PutRejectsInvalidDefinition(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")

	s, err := memstore.Open(path, nil)
	require.NoError(t, err)

	err = s.Put(testMAC, []*backend.Definition{{}})
	assert.Error(t, err)
}

func TestStore_Reinitialise(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")

	s, err := memstore.Open(path, nil)
	require.NoError(t, err)

	require.NoError(t, s.Reinitialise(context.Background()))
}
