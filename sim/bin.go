package sim

import (
	"fmt"
	"math/rand"
	"sort"
)

// StockEntry is one row of a bin's stock ledger: the quantity on hand from
// Time onward.
type StockEntry struct {
	Time     float64
	Quantity int
}

// LockInterval is an end-exclusive span [Start, End) during which a bin was
// busy serving a single operation.
type LockInterval struct {
	Start float64
	End   float64
}

// ServiceResult describes how long one operation waited for and occupied a bin.
type ServiceResult struct {
	QueueTime   float64 // time spent waiting for the bin to free up
	ServiceTime float64 // time the bin was locked by this operation
	Completed   float64 // simulated time the operation finished
}

// ReserveResult is a ServiceResult plus the quantity actually taken.
// Reserved may be less than requested; that is partial fulfillment, not an error.
type ReserveResult struct {
	ServiceResult
	Reserved int
}

// Bin is a single-server FCFS queue with its own stock ledger.
// Both the ledger and the lock history are non-decreasing in time. A bin's
// state is only mutated through its own methods, called by the owning Pool.
type Bin struct {
	ledger      []StockEntry
	locks       []LockInterval
	serviceTime float64 // mean of the exponential service-time distribution
	rng         *rand.Rand
}

// NewBin creates a bin holding stock from createdAt onward.
func NewBin(stock int, createdAt, serviceTime float64, seed int64) *Bin {
	return &Bin{
		ledger:      []StockEntry{{Time: createdAt, Quantity: stock}},
		locks:       []LockInterval{{Start: createdAt, End: createdAt}},
		serviceTime: serviceTime,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Reserve waits for the bin, then takes as much of quantity as is on hand.
func (b *Bin) Reserve(quantity int, t float64) ReserveResult {
	queueEnd := b.NextUnlocked(t)
	service := expDuration(b.rng, b.serviceTime)
	completed := queueEnd + service
	b.locks = append(b.locks, LockInterval{Start: queueEnd, End: completed})

	onHand := b.StockAt(queueEnd)
	reserved := min(quantity, onHand)
	b.ledger = append(b.ledger, StockEntry{Time: completed, Quantity: onHand - reserved})

	return ReserveResult{
		ServiceResult: ServiceResult{
			QueueTime:   queueEnd - t,
			ServiceTime: service,
			Completed:   completed,
		},
		Reserved: reserved,
	}
}

// AddStock waits for the bin, then adds quantity to what is on hand.
func (b *Bin) AddStock(quantity int, t float64) ServiceResult {
	queueEnd := b.NextUnlocked(t)
	service := expDuration(b.rng, b.serviceTime)
	completed := queueEnd + service
	b.locks = append(b.locks, LockInterval{Start: queueEnd, End: completed})
	b.ledger = append(b.ledger, StockEntry{Time: completed, Quantity: b.StockAt(queueEnd) + quantity})

	return ServiceResult{
		QueueTime:   queueEnd - t,
		ServiceTime: service,
		Completed:   completed,
	}
}

// Lock occupies the bin for [start, end) without touching stock.
// Panics if the interval would overlap or precede the existing history.
func (b *Bin) Lock(start, end float64) {
	if end < start {
		panic(fmt.Sprintf("Bin.Lock: end %v before start %v", end, start))
	}
	if last := b.locks[len(b.locks)-1]; start < last.End {
		panic(fmt.Sprintf("Bin.Lock: start %v overlaps lock ending at %v", start, last.End))
	}
	b.locks = append(b.locks, LockInterval{Start: start, End: end})
}

// NextUnlocked returns the earliest time >= t at which the bin is free.
func (b *Bin) NextUnlocked(t float64) float64 {
	return max(t, b.locks[len(b.locks)-1].End)
}

// Stock returns the quantity of the latest ledger entry.
func (b *Bin) Stock() int {
	return b.ledger[len(b.ledger)-1].Quantity
}

// StockAt returns the quantity recorded by the last ledger entry at or before t.
// Times before the bin existed report the initial quantity.
func (b *Bin) StockAt(t float64) int {
	i := sort.Search(len(b.ledger), func(i int) bool { return b.ledger[i].Time > t })
	if i == 0 {
		return b.ledger[0].Quantity
	}
	return b.ledger[i-1].Quantity
}

// Utilization returns the fraction of [since, to) covered by lock intervals.
// A zero-width window reports 1. Panics if to < since.
func (b *Bin) Utilization(since, to float64) float64 {
	if to < since {
		panic(fmt.Sprintf("Bin.Utilization: window end %v before start %v", to, since))
	}
	if to == since {
		return 1
	}
	// locks are sorted and disjoint: skip everything that ended before the window
	first := sort.Search(len(b.locks), func(i int) bool { return b.locks[i].End > since })
	busy := 0.0
	for _, l := range b.locks[first:] {
		if l.Start >= to {
			break
		}
		busy += min(l.End, to) - max(l.Start, since)
	}
	return min(1, max(0, busy/(to-since)))
}

// Ledger returns a copy of the stock ledger.
func (b *Bin) Ledger() []StockEntry {
	return append([]StockEntry(nil), b.ledger...)
}

// Locks returns a copy of the lock history.
func (b *Bin) Locks() []LockInterval {
	return append([]LockInterval(nil), b.locks...)
}
