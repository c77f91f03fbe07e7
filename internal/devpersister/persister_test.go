package devpersister

import (
	"testing"

	"github.com/carbond/carbond/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	batches []batch
	i       int
}

type batch struct {
	metric string
	points []schema.Datapoint
}

func (f *fakeSource) PopMetric() (string, []schema.Datapoint, bool) {
	if f.i >= len(f.batches) {
		return "", nil, false
	}
	b := f.batches[f.i]
	f.i++
	return b.metric, b.points, true
}

func newTestPersister(t *testing.T) *Persister {
	t.Helper()
	p, err := Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestInsertAndCount(t *testing.T) {
	p := newTestPersister(t)

	err := p.Insert([]Record{
		{Metric: "cpu.load", Timestamp: 1700000000, Value: 1.5},
		{Metric: "cpu.load", Timestamp: 1700000060, Value: 2.0},
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, p.db.Get(&count, "SELECT COUNT(*) FROM datapoint WHERE metric = ?", "cpu.load"))
	assert.Equal(t, 2, count)
}

func TestInsertEmptyIsNoop(t *testing.T) {
	p := newTestPersister(t)
	assert.NoError(t, p.Insert(nil))
}

func TestDrainAllPersistsEveryMetric(t *testing.T) {
	p := newTestPersister(t)
	source := &fakeSource{batches: []batch{
		{metric: "a", points: []schema.Datapoint{{Timestamp: 1, Value: 1}}},
		{metric: "b", points: []schema.Datapoint{{Timestamp: 2, Value: 2}, {Timestamp: 3, Value: 3}}},
	}}

	total, err := p.DrainAll(source)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	var count int
	require.NoError(t, p.db.Get(&count, "SELECT COUNT(*) FROM datapoint"))
	assert.Equal(t, 3, count)
}
