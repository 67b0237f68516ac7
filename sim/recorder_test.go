package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T, width, end float64) *Recorder {
	t.Helper()
	r, err := NewRecorder(width, end)
	require.NoError(t, err)
	return r
}

// recordTwoBuckets fills bucket 0 with two events and bucket 1 with one.
func recordTwoBuckets(t *testing.T, r *Recorder) {
	t.Helper()
	require.NoError(t, r.RecordEvent(1, 2, 30, 1, 5))
	require.NoError(t, r.RecordEvent(3, 4, 10, 3, 7))
	require.NoError(t, r.RecordEvent(100, 100, 0, 1, 15))
}

func TestNewRecorder_RejectsNonPositiveWidth(t *testing.T) {
	_, err := NewRecorder(0, 10)
	assert.Error(t, err)
	_, err = NewRecorder(-1, 10)
	assert.Error(t, err)
}

func TestRecorder_AverageAt(t *testing.T) {
	r := newTestRecorder(t, 10, 1000)
	recordTwoBuckets(t, r)

	assert.InDelta(t, 2.0, r.AverageAt(MetricQueueTime, 9), 1e-9)
	assert.InDelta(t, 3.0, r.AverageAt(MetricServiceTime, 9), 1e-9)
	assert.InDelta(t, 20.0, r.AverageAt(MetricStock, 9), 1e-9)
	assert.InDelta(t, 2.0, r.AverageAt(MetricBinsChecked, 9), 1e-9)
	assert.InDelta(t, 100.0, r.AverageAt(MetricQueueTime, 16), 1e-9)
	assert.Equal(t, 0.0, r.AverageAt(MetricQueueTime, 55), "empty bucket")
}

func TestRecorder_AverageAt_BoundaryReadsPreviousBucket(t *testing.T) {
	// GIVEN events in buckets 0 and 1
	r := newTestRecorder(t, 10, 1000)
	recordTwoBuckets(t, r)

	// WHEN querying within the first 5% of bucket 1
	// THEN the completed bucket 0 is reported
	assert.InDelta(t, 2.0, r.AverageAt(MetricQueueTime, 10), 1e-9)
	assert.InDelta(t, 2.0, r.AverageAt(MetricQueueTime, 10.2), 1e-9)

	// WHEN querying past the boundary zone
	// THEN bucket 1 is reported
	assert.InDelta(t, 100.0, r.AverageAt(MetricQueueTime, 10.6), 1e-9)

	// bucket 0 has no previous bucket
	assert.InDelta(t, 2.0, r.AverageAt(MetricQueueTime, 0), 1e-9)
}

func TestRecorder_AverageAt_Idempotent(t *testing.T) {
	r := newTestRecorder(t, 10, 1000)
	recordTwoBuckets(t, r)

	first := r.AverageAt(MetricServiceTime, 17)
	second := r.AverageAt(MetricServiceTime, 17)
	assert.Equal(t, first, second)
}

func TestRecorder_RecordEvent_PastEndIsDropped(t *testing.T) {
	r := newTestRecorder(t, 10, 20)

	require.NoError(t, r.RecordEvent(1, 1, 1, 1, 25))

	assert.Equal(t, int64(0), r.EventsAt(25))
	assert.Equal(t, Timelog{Queue: []float64{0}, Service: []float64{0}, Stock: []float64{0}}, r.Timelog())
}

func TestRecorder_InvalidInputsPanic(t *testing.T) {
	r := newTestRecorder(t, 10, 100)

	assert.Panics(t, func() { _ = r.RecordEvent(1, 1, 1, 0, 5) }, "bins checked < 1")
	assert.Panics(t, func() { _ = r.RecordRequestStart(-1) }, "negative time")
	assert.Panics(t, func() { _ = r.RecordPoolSize(0, 5) }, "empty pool")
}

func TestRecorder_CapacityExceeded(t *testing.T) {
	// GIVEN a 1-second bucket width and a far-away end
	r := newTestRecorder(t, 1, 1e9)

	// WHEN an event lands in the last bucket that fits
	// THEN the buffers grow to the ceiling
	require.NoError(t, r.RecordEvent(1, 1, 1, 1, float64(maxBufferCapacity-1)))

	// WHEN an event lands one bucket past it
	err := r.RecordEvent(1, 1, 1, 1, float64(maxBufferCapacity))

	// THEN the error identifies the overflowing buffer
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "events", capErr.Buffer)
	assert.Equal(t, maxBufferCapacity, capErr.Limit)
	assert.Equal(t, maxBufferCapacity, capErr.Index)
}

func TestRecorder_RequestRateAt(t *testing.T) {
	r := newTestRecorder(t, 10, 1000)
	// 20 starts in bucket 0
	for k := 0; k < 20; k++ {
		require.NoError(t, r.RecordRequestStart(0.5*float64(k)))
	}
	// 3 starts in the first second of bucket 1
	for _, ts := range []float64{10, 10.5, 11} {
		require.NoError(t, r.RecordRequestStart(ts))
	}

	// bucket 0 is complete: plain rate
	assert.InDelta(t, 2.0, r.RequestRateAt(5), 1e-9)
	// bucket 1 is filling: 0.7 * 3/1 + 0.3 * 20/10
	assert.InDelta(t, 2.7, r.RequestRateAt(11), 1e-9)
}

func TestRecorder_RequestRateAt_NoElapsedTimeUsesPrevious(t *testing.T) {
	r := newTestRecorder(t, 10, 1000)
	for k := 0; k < 5; k++ {
		require.NoError(t, r.RecordRequestStart(float64(k)))
	}
	require.NoError(t, r.RecordRequestStart(10))

	assert.InDelta(t, 0.5, r.RequestRateAt(10), 1e-9)
}

func TestRecorder_Timelog(t *testing.T) {
	r := newTestRecorder(t, 10, 1000)
	recordTwoBuckets(t, r)
	require.NoError(t, r.RecordEvent(6, 6, 6, 1, 35))

	tl := r.Timelog()

	assert.Equal(t, []float64{2, 100, 0, 6}, tl.Queue)
	assert.Equal(t, []float64{3, 100, 0, 6}, tl.Service)
	assert.Equal(t, []float64{20, 0, 0, 6}, tl.Stock)
}

func TestRecorder_RestocksAndPoolSizes(t *testing.T) {
	r := newTestRecorder(t, 10, 100)

	require.NoError(t, r.RecordRestock(3))
	require.NoError(t, r.RecordRestock(200))
	require.NoError(t, r.RecordPoolSize(1, 0))
	require.NoError(t, r.RecordPoolSize(4, 12.5))

	assert.Equal(t, []float64{3}, r.Restocks())
	assert.Equal(t, []PoolSample{{Time: 0, Size: 1}, {Time: 12.5, Size: 4}}, r.PoolSizeHistory())
}

func TestMetric_String(t *testing.T) {
	assert.Equal(t, "queue_time", MetricQueueTime.String())
	assert.Equal(t, "bins_checked", MetricBinsChecked.String())
	assert.Equal(t, "Metric(9)", Metric(9).String())
}
