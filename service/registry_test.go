package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network/memnet"
	"github.com/atanasg/ProteoVisualizer/pgroup"
)

func TestRegistry_AddGet(t *testing.T) {
	session := memnet.NewSession()
	r := NewRegistry(0, nil)

	net := session.CreateNetwork("a")
	report := &pgroup.Report{Resolved: 2}
	entry := r.Add(net, report)

	got, err := r.Get(entry.ID.String())
	require.NoError(t, err)
	assert.Same(t, entry, got)
	assert.Same(t, report, got.Report)
	assert.Equal(t, 1, r.Len())

	_, err = r.Get("bogus")
	assert.ErrorIs(t, err, errors.ErrNetworkNotFound)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegistry_Eviction(t *testing.T) {
	session := memnet.NewSession()
	var evicted []string
	r := NewRegistry(2, func(e *Entry) { evicted = append(evicted, e.Network.Name()) })

	a := r.Add(session.CreateNetwork("a"), &pgroup.Report{})
	b := r.Add(session.CreateNetwork("b"), &pgroup.Report{})
	c := r.Add(session.CreateNetwork("c"), &pgroup.Report{})

	assert.Equal(t, []string{"a"}, evicted)
	_, err := r.Get(a.ID.String())
	assert.ErrorIs(t, err, errors.ErrNetworkNotFound)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)
}

func TestRegistry_Remove(t *testing.T) {
	session := memnet.NewSession()
	var evicted int
	r := NewRegistry(0, func(*Entry) { evicted++ })

	a := r.Add(session.CreateNetwork("a"), &pgroup.Report{})
	b := r.Add(session.CreateNetwork("b"), &pgroup.Report{})

	require.NoError(t, r.Remove(a.ID.String()))
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, b.ID, r.List()[0].ID)

	err := r.Remove(a.ID.String())
	assert.ErrorIs(t, err, errors.ErrNetworkNotFound)
	assert.Equal(t, 1, evicted)
}
