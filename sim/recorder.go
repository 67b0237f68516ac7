package sim

import (
	"fmt"
	"math"
)

// Metric names a per-bucket average the Recorder can report.
type Metric int

const (
	MetricQueueTime Metric = iota
	MetricServiceTime
	MetricStock
	MetricBinsChecked
)

func (m Metric) String() string {
	switch m {
	case MetricQueueTime:
		return "queue_time"
	case MetricServiceTime:
		return "service_time"
	case MetricStock:
		return "stock"
	case MetricBinsChecked:
		return "bins_checked"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// boundaryFraction is how far into a bucket a query must be before the bucket
// is trusted; earlier queries read the previous bucket instead.
const boundaryFraction = 0.05

// PoolSample is one entry of the pool-size history.
type PoolSample struct {
	Time float64
	Size int
}

// Timelog holds per-bucket averages from bucket 0 up to the latest recorded
// event. Empty buckets are zero.
type Timelog struct {
	Queue   []float64
	Service []float64
	Stock   []float64
}

// Recorder accumulates windowed metrics in fixed-width time buckets
// (bucket = floor(t / sampleWidth)). Only the Simulator writes to it.
type Recorder struct {
	width float64
	end   float64

	queueSum   *growBuffer[float64]
	serviceSum *growBuffer[float64]
	stockSum   *growBuffer[int64]
	checkedSum *growBuffer[int64]
	events     *growBuffer[int64]
	latest     float64 // latest recorded event time

	started     *growBuffer[int64]
	latestStart float64

	restocks  *growBuffer[float64]
	poolSizes *growBuffer[PoolSample]
}

// NewRecorder creates a Recorder with the given bucket width. Events and
// restocks after end are dropped.
func NewRecorder(sampleWidth, end float64) (*Recorder, error) {
	if sampleWidth <= 0 {
		return nil, fmt.Errorf("sample width must be > 0, got %v", sampleWidth)
	}
	return &Recorder{
		width:      sampleWidth,
		end:        end,
		queueSum:   newGrowBuffer[float64]("queue_time", initialBufferCapacity, maxBufferCapacity),
		serviceSum: newGrowBuffer[float64]("service_time", initialBufferCapacity, maxBufferCapacity),
		stockSum:   newGrowBuffer[int64]("stock", initialBufferCapacity, maxBufferCapacity),
		checkedSum: newGrowBuffer[int64]("bins_checked", initialBufferCapacity, maxBufferCapacity),
		events:     newGrowBuffer[int64]("events", initialBufferCapacity, maxBufferCapacity),
		started:    newGrowBuffer[int64]("request_starts", initialBufferCapacity, maxBufferCapacity),
		restocks:   newGrowBuffer[float64]("restocks", initialBufferCapacity, maxBufferCapacity),
		poolSizes:  newGrowBuffer[PoolSample]("pool_sizes", initialBufferCapacity, maxBufferCapacity),
	}, nil
}

// SampleWidth returns the bucket width.
func (r *Recorder) SampleWidth() float64 { return r.width }

// End returns the experiment end time.
func (r *Recorder) End() float64 { return r.end }

func (r *Recorder) bucket(t float64) int {
	if t < 0 || math.IsNaN(t) {
		panic(fmt.Sprintf("Recorder: invalid timestamp %v", t))
	}
	return int(math.Floor(t / r.width))
}

// RecordEvent adds one completed (or given-up) request to the bucket holding t.
func (r *Recorder) RecordEvent(queueTime, serviceTime float64, stockAfter, binsChecked int, t float64) error {
	if t > r.end {
		return nil
	}
	if binsChecked < 1 {
		panic(fmt.Sprintf("Recorder.RecordEvent: bins checked %d < 1", binsChecked))
	}
	i := r.bucket(t)
	// the five event buffers grow in lockstep, so one check covers them all
	if err := r.events.ensure(i); err != nil {
		return err
	}
	_ = addAt(r.queueSum, i, queueTime)
	_ = addAt(r.serviceSum, i, serviceTime)
	_ = addAt(r.stockSum, i, int64(stockAfter))
	_ = addAt(r.checkedSum, i, int64(binsChecked))
	_ = addAt(r.events, i, 1)
	r.latest = max(r.latest, t)
	return nil
}

func addAt[T int64 | float64](b *growBuffer[T], i int, v T) error {
	p, err := b.slot(i)
	if err != nil {
		return err
	}
	*p += v
	return nil
}

// RecordRestock appends a restock timestamp.
func (r *Recorder) RecordRestock(t float64) error {
	if t > r.end {
		return nil
	}
	r.bucket(t)
	return r.restocks.append(t)
}

// RecordPoolSize appends a pool-size sample.
func (r *Recorder) RecordPoolSize(size int, t float64) error {
	if size < 1 {
		panic(fmt.Sprintf("Recorder.RecordPoolSize: size %d < 1", size))
	}
	r.bucket(t)
	return r.poolSizes.append(PoolSample{Time: t, Size: size})
}

// RecordRequestStart counts an incoming request in the bucket holding t.
func (r *Recorder) RecordRequestStart(t float64) error {
	if err := addAt(r.started, r.bucket(t), 1); err != nil {
		return err
	}
	r.latestStart = max(r.latestStart, t)
	return nil
}

// AverageAt returns the per-event average of metric in the bucket holding t.
// A query in the first 5% of a bucket reads the previous bucket, which has
// finished accumulating. An empty bucket reports 0.
func (r *Recorder) AverageAt(metric Metric, t float64) float64 {
	i := r.bucket(t)
	if frac := math.Mod(t, r.width) / r.width; frac >= 0 && frac <= boundaryFraction {
		i = max(0, i-1)
	}
	n := r.events.at(i)
	if n == 0 {
		return 0
	}
	var sum float64
	switch metric {
	case MetricQueueTime:
		sum = r.queueSum.at(i)
	case MetricServiceTime:
		sum = r.serviceSum.at(i)
	case MetricStock:
		sum = float64(r.stockSum.at(i))
	case MetricBinsChecked:
		sum = float64(r.checkedSum.at(i))
	default:
		panic(fmt.Sprintf("Recorder.AverageAt: unknown metric %v", metric))
	}
	return sum / float64(n)
}

// RequestRateAt estimates requests per time unit in the bucket holding t.
// While that bucket is still filling, its partial rate is blended 70/30 with
// the previous bucket's full rate.
func (r *Recorder) RequestRateAt(t float64) float64 {
	i := r.bucket(t)
	if r.latestStart < r.width*float64(i+1) {
		elapsed := math.Mod(r.latestStart, r.width)
		prev := 0.0
		if i > 0 {
			prev = float64(r.started.at(i-1)) / r.width
		}
		curr := prev
		if elapsed != 0 && i < len(r.started.data) {
			curr = float64(r.started.at(i)) / elapsed
		}
		return curr*0.7 + prev*0.3
	}
	return float64(r.started.at(i)) / r.width
}

// EventsAt returns the number of events recorded in the bucket holding t.
func (r *Recorder) EventsAt(t float64) int64 {
	return r.events.at(r.bucket(t))
}

// Timelog returns per-bucket averages up to the latest recorded event.
func (r *Recorder) Timelog() Timelog {
	n := int(math.Floor(r.latest/r.width)) + 1
	counts := r.events.prefix(n)
	queue := r.queueSum.prefix(n)
	service := r.serviceSum.prefix(n)
	stock := r.stockSum.prefix(n)

	tl := Timelog{
		Queue:   make([]float64, n),
		Service: make([]float64, n),
		Stock:   make([]float64, n),
	}
	for i, c := range counts {
		if c == 0 {
			continue
		}
		tl.Queue[i] = queue[i] / float64(c)
		tl.Service[i] = service[i] / float64(c)
		tl.Stock[i] = float64(stock[i]) / float64(c)
	}
	return tl
}

// Restocks returns the recorded restock timestamps.
func (r *Recorder) Restocks() []float64 {
	return r.restocks.values()
}

// PoolSizeHistory returns the recorded pool-size samples.
func (r *Recorder) PoolSizeHistory() []PoolSample {
	return r.poolSizes.values()
}
