package track

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeRecordsNewestFirst(t *testing.T) {
	var n atomic.Int64
	tr, err := New("*/5 * * * * *", 3, func() (Sample, bool) {
		return Sample{Value: float64(n.Add(1))}, true
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		tr.take()
	}

	samples := tr.Samples()
	require.Len(t, samples, 3, "history bounded at capacity")
	assert.Equal(t, 5.0, samples[0].Value)
	assert.Equal(t, 3.0, samples[2].Value)
	assert.False(t, samples[0].Timestamp.IsZero(), "timestamp filled when absent")

	latest, ok := tr.Latest()
	require.True(t, ok)
	assert.Equal(t, 5.0, latest.Value)
}

func TestTakeSkipsWhenNotReady(t *testing.T) {
	tr, err := New("*/5 * * * * *", 0, func() (Sample, bool) {
		return Sample{}, false
	})
	require.NoError(t, err)

	tr.take()
	assert.Empty(t, tr.Samples())
	_, ok := tr.Latest()
	assert.False(t, ok)
}

func TestBadSpec(t *testing.T) {
	_, err := New("not a spec", 10, func() (Sample, bool) { return Sample{}, false })
	assert.Error(t, err)
}

func TestCronCadence(t *testing.T) {
	var fired atomic.Int64
	tr, err := New("* * * * * *", 10, func() (Sample, bool) {
		fired.Add(1)
		return Sample{Value: 1}, true
	})
	require.NoError(t, err)

	tr.Start()
	defer tr.Stop()

	assert.Eventually(t, func() bool { return fired.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
