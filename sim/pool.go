package sim

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/sirupsen/logrus"
)

// Reservation is the outcome of Pool.ReserveStock.
type Reservation struct {
	ReserveResult
	BinID int // bin that serviced the reservation
}

// Pool owns an ordered set of bins (index = bin id), routes reservations and
// restocks to them, and reshapes itself on request. Every call must carry a
// timestamp at or after the latest one the pool has seen.
type Pool struct {
	bins        []*Bin
	serviceTime float64
	watermark   float64
	rng         *rand.Rand
}

// NewPool builds a pool of cfg.Bins bins created at createdAt, spreading
// cfg.Stock over them with the even-split rule. Bins are seeded from the
// pool's RNG stream in bin order.
func NewPool(cfg PoolConfig, createdAt float64, rng *PartitionedRNG) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pool{
		serviceTime: cfg.ServiceTime,
		watermark:   createdAt,
		rng:         rng.ForSubsystem(SubsystemPool),
	}
	p.bins = p.newBins(cfg.Bins, cfg.Stock, createdAt)
	return p, nil
}

// newBins creates n bins at t holding stock between them.
func (p *Pool) newBins(n, stock int, t float64) []*Bin {
	shares := evenSplit(stock, n)
	bins := make([]*Bin, n)
	for i := range bins {
		bins[i] = NewBin(shares[i], t, p.serviceTime, p.rng.Int63())
	}
	return bins
}

// evenSplit divides quantity into n shares that differ by at most one: the
// first quantity%n shares get ceil(quantity/n), the rest floor(quantity/n).
func evenSplit(quantity, n int) []int {
	shares := make([]int, n)
	base, extra := quantity/n, quantity%n
	for i := range shares {
		shares[i] = base
		if i < extra {
			shares[i]++
		}
	}
	return shares
}

// advance enforces the non-decreasing time contract and moves the watermark.
func (p *Pool) advance(t float64, op string) {
	if t < p.watermark {
		panic(fmt.Sprintf("Pool.%s: time %v is before watermark %v", op, t, p.watermark))
	}
	p.watermark = t
}

// ReserveStock reserves up to quantity from one bin. When binID is nil the bin
// is picked uniformly at random from the pool's RNG.
func (p *Pool) ReserveStock(quantity int, t float64, binID *int) (Reservation, error) {
	if quantity <= 0 {
		return Reservation{}, fmt.Errorf("reserve %d: %w", quantity, ErrInvalidQuantity)
	}
	if binID != nil && (*binID < 0 || *binID >= len(p.bins)) {
		return Reservation{}, fmt.Errorf("reserve from bin %d of %d: %w", *binID, len(p.bins), ErrUnknownBin)
	}
	p.advance(t, "ReserveStock")

	var id int
	if binID == nil {
		id = p.rng.Intn(len(p.bins))
	} else {
		id = *binID
	}
	res := p.bins[id].Reserve(quantity, t)
	return Reservation{ReserveResult: res, BinID: id}, nil
}

// AddStock spreads quantity over binIDs (all bins when nil). Bins are visited
// in a shuffled order so the larger shares do not always land on the same
// bins. Returns the touched bin ids, sorted.
func (p *Pool) AddStock(quantity int, t float64, binIDs []int) ([]int, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("add %d: %w", quantity, ErrInvalidQuantity)
	}
	var targets []int
	if binIDs == nil {
		targets = make([]int, len(p.bins))
		for i := range targets {
			targets[i] = i
		}
	} else {
		for _, id := range binIDs {
			if id < 0 || id >= len(p.bins) {
				return nil, fmt.Errorf("add to bin %d of %d: %w", id, len(p.bins), ErrUnknownBin)
			}
		}
		targets = slices.Clone(binIDs)
	}
	if len(targets) == 0 {
		return []int{}, nil
	}
	p.advance(t, "AddStock")

	p.rng.Shuffle(len(targets), func(i, j int) { targets[i], targets[j] = targets[j], targets[i] })
	shares := evenSplit(quantity, len(targets))
	for i, id := range targets {
		p.bins[id].AddStock(shares[i], t)
	}
	slices.Sort(targets)
	return targets, nil
}

// Reshape replaces every bin with n fresh ones holding the same total stock.
// The pool cannot be torn down until every in-flight operation has finished,
// and the resize itself takes one exponential service-time draw during which
// all new bins are locked. Returns the time the new bins become free.
func (p *Pool) Reshape(n int, t float64) (float64, error) {
	if n < 1 {
		return t, fmt.Errorf("reshape to %d: %w", n, ErrInvalidPoolSize)
	}
	p.advance(t, "Reshape")
	if n == len(p.bins) {
		return t, nil
	}

	soonest := t
	for _, b := range p.bins {
		soonest = max(soonest, b.NextUnlocked(t))
	}
	stock := p.StockAvailable()
	old := len(p.bins)

	p.bins = p.newBins(n, stock, soonest)
	resize := expDuration(p.rng, p.serviceTime)
	done := soonest + resize
	for _, b := range p.bins {
		b.Lock(soonest, done)
	}

	logrus.Infof("[t=%.3f] reshaped pool %d -> %d bins (stock %d), ready at %.3f", t, old, n, stock, done)
	return done, nil
}

// Size returns the number of bins.
func (p *Pool) Size() int {
	return len(p.bins)
}

// Bin returns the bin with the given id.
func (p *Pool) Bin(id int) *Bin {
	return p.bins[id]
}

// Watermark returns the latest timestamp the pool has been called with.
func (p *Pool) Watermark() float64 {
	return p.watermark
}

// StockAvailable sums the current stock of every bin.
func (p *Pool) StockAvailable() int {
	total := 0
	for _, b := range p.bins {
		total += b.Stock()
	}
	return total
}

// AvgUtilization averages Bin.Utilization over all bins.
func (p *Pool) AvgUtilization(since, to float64) float64 {
	sum := 0.0
	for _, b := range p.bins {
		sum += b.Utilization(since, to)
	}
	return sum / float64(len(p.bins))
}
