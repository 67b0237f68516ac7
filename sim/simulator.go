// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/binsim/binsim/sim/trace"
)

// SimConfig groups everything NewSimulator needs besides the workload.
type SimConfig struct {
	Experiment ExperimentConfig
	Trace      trace.TraceConfig
}

// Simulator is the core object that holds simulation time, the pool, the
// recorder and the pending-action queue. It owns the queue exclusively and
// is the only writer of the Recorder.
type Simulator struct {
	Clock float64
	// End is the experiment end: recorder events past it are dropped and no
	// adapt tick is scheduled after it.
	End        float64
	Pool       *Pool
	Recorder   *Recorder
	Controller Controller
	Trace      *trace.SimulationTrace
	Summary    *Summary

	queue    *ActionQueue
	policy   string
	interval float64
}

// NewSimulator builds a simulator over a pre-sorted workload. When ctrl is
// nil the controller named in cfg.Experiment.Controller is built.
// Records are scheduled in the order given; they are not re-sorted.
func NewSimulator(cfg SimConfig, records []WorkloadRecord, ctrl Controller) (*Simulator, error) {
	exp := cfg.Experiment
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	if err := validateWorkload(records); err != nil {
		return nil, fmt.Errorf("workload: %w", err)
	}
	if !trace.IsValidTraceLevel(string(cfg.Trace.Level)) {
		return nil, fmt.Errorf("unknown trace level %q", cfg.Trace.Level)
	}
	policy := exp.Controller.Policy
	if policy == "" {
		policy = "pid"
	}
	if ctrl != nil {
		policy = fmt.Sprintf("%T", ctrl)
	} else {
		var err error
		if ctrl, err = NewController(exp.Controller); err != nil {
			return nil, fmt.Errorf("controller: %w", err)
		}
	}

	end := exp.Recorder.End
	if end == 0 && len(records) > 0 {
		end = records[len(records)-1].Time
	}

	rng := NewPartitionedRNG(NewSimulationKey(exp.Seed))
	pool, err := NewPool(exp.Pool, 0, rng)
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	recorder, err := NewRecorder(exp.Recorder.SampleWidth, end)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}

	s := &Simulator{
		End:        end,
		Pool:       pool,
		Recorder:   recorder,
		Controller: ctrl,
		Trace:      trace.NewSimulationTrace(cfg.Trace),
		Summary:    NewSummary(),
		queue:      NewActionQueue(),
		policy:     policy,
		interval:   exp.Controller.Interval,
	}
	if err := recorder.RecordPoolSize(pool.Size(), 0); err != nil {
		return nil, err
	}

	for _, r := range records {
		switch r.Kind {
		case RecordRequest:
			s.Schedule(&RequestAction{ID: r.ID, Quantity: r.Quantity, Time: r.Time})
		case RecordRestock:
			s.Schedule(&RestockAction{ID: r.ID, Quantity: r.Quantity, Time: r.Time})
		}
	}
	if s.interval > 0 && s.interval <= end {
		s.Schedule(&AdaptTickAction{Time: s.interval})
	}
	return s, nil
}

// Schedule pushes an action onto the pending-action queue.
func (s *Simulator) Schedule(a Action) {
	s.queue.Schedule(a)
}

// Pending returns the number of queued actions.
func (s *Simulator) Pending() int {
	return s.queue.Len()
}

// Run processes actions in time order until none are left. A fatal error
// (recorder capacity) aborts the run and is returned.
func (s *Simulator) Run() error {
	logrus.Infof("Starting simulation: %d bins, %d stock, %d pending actions, end=%.3f",
		s.Pool.Size(), s.Pool.StockAvailable(), s.queue.Len(), s.End)
	for s.queue.Len() > 0 {
		a := s.queue.PopNext()
		s.Clock = a.Timestamp()
		logrus.Debugf("[t=%.6f] Executing %T", s.Clock, a)
		if err := s.dispatch(a); err != nil {
			return fmt.Errorf("t=%v: %w", s.Clock, err)
		}
	}
	s.Summary.finish(s.Pool, s.Clock)
	logrus.Infof("[t=%.6f] Simulation ended", s.Clock)
	return nil
}

func (s *Simulator) dispatch(a Action) error {
	switch a := a.(type) {
	case *RequestAction:
		return s.handleRequest(a)
	case *RestockAction:
		return s.handleRestock(a)
	case *RetryAction:
		return s.handleRetry(a)
	case *ReturnAction:
		return s.handleReturn(a)
	case *AdaptTickAction:
		return s.handleAdaptTick(a)
	default:
		panic(fmt.Sprintf("Simulator.dispatch: unknown action %T", a))
	}
}

func (s *Simulator) handleRequest(a *RequestAction) error {
	if err := s.Recorder.RecordRequestStart(a.Time); err != nil {
		return err
	}
	s.Summary.RequestsIssued++
	s.Summary.UnitsRequested += int64(a.Quantity)

	res, err := s.Pool.ReserveStock(a.Quantity, a.Time, nil)
	if err != nil {
		return err
	}
	if res.Reserved == a.Quantity {
		return s.satisfy(a, res.QueueTime, res.ServiceTime, 1, res.Completed)
	}
	s.Summary.Retries++
	s.Schedule(&RetryAction{
		Original:    *a,
		Reserved:    res.Reserved,
		FirstBin:    res.BinID,
		BinsChecked: 1,
		QueueTime:   res.QueueTime,
		ServiceTime: res.ServiceTime,
		Time:        res.Completed,
	})
	return nil
}

func (s *Simulator) handleRetry(a *RetryAction) error {
	size := s.Pool.Size()
	if a.BinsChecked >= size {
		s.Schedule(&ReturnAction{
			Original:    a.Original,
			Quantity:    a.Reserved,
			QueueTime:   a.QueueTime,
			ServiceTime: a.ServiceTime,
			BinsChecked: a.BinsChecked,
			Time:        a.Time,
		})
		return nil
	}

	next := (a.FirstBin + a.BinsChecked) % size
	res, err := s.Pool.ReserveStock(a.Original.Quantity-a.Reserved, a.Time, &next)
	if err != nil {
		return err
	}
	a.Reserved += res.Reserved
	a.QueueTime += res.QueueTime
	a.ServiceTime += res.ServiceTime
	if a.Reserved == a.Original.Quantity {
		return s.satisfy(&a.Original, a.QueueTime, a.ServiceTime, a.BinsChecked+1, res.Completed)
	}
	a.BinsChecked++
	a.Time = res.Completed
	s.Summary.Retries++
	s.Schedule(a)
	return nil
}

func (s *Simulator) handleReturn(a *ReturnAction) error {
	if a.Quantity > 0 {
		if _, err := s.Pool.AddStock(a.Quantity, a.Time, nil); err != nil {
			return err
		}
	}
	if err := s.Recorder.RecordEvent(a.QueueTime, a.ServiceTime, s.Pool.StockAvailable(), a.BinsChecked, a.Time); err != nil {
		return err
	}
	logrus.Debugf("[t=%.6f] request %d given up after %d bins, returned %d of %d",
		a.Time, a.Original.ID, a.BinsChecked, a.Quantity, a.Original.Quantity)
	s.Summary.givenUp(a.BinsChecked, a.Quantity)
	s.Trace.RecordOutcome(trace.OutcomeRecord{
		RequestID:   a.Original.ID,
		Arrival:     a.Original.Time,
		Completed:   a.Time,
		Requested:   a.Original.Quantity,
		BinsChecked: a.BinsChecked,
		QueueTime:   a.QueueTime,
		ServiceTime: a.ServiceTime,
	})
	return nil
}

func (s *Simulator) satisfy(req *RequestAction, queueTime, serviceTime float64, binsChecked int, completed float64) error {
	if err := s.Recorder.RecordEvent(queueTime, serviceTime, s.Pool.StockAvailable(), binsChecked, completed); err != nil {
		return err
	}
	s.Summary.satisfied(queueTime, serviceTime, binsChecked, req.Quantity)
	s.Trace.RecordOutcome(trace.OutcomeRecord{
		RequestID:   req.ID,
		Arrival:     req.Time,
		Completed:   completed,
		Requested:   req.Quantity,
		Reserved:    req.Quantity,
		BinsChecked: binsChecked,
		QueueTime:   queueTime,
		ServiceTime: serviceTime,
		Satisfied:   true,
	})
	return nil
}

func (s *Simulator) handleRestock(a *RestockAction) error {
	if _, err := s.Pool.AddStock(a.Quantity, a.Time, nil); err != nil {
		return err
	}
	s.Summary.Restocks++
	s.Summary.UnitsRestocked += int64(a.Quantity)
	return s.Recorder.RecordRestock(a.Time)
}

// Observe builds the controller's view of the system at time t.
func (s *Simulator) Observe(t float64) Observation {
	since := max(0, t-s.Recorder.SampleWidth())
	return Observation{
		PoolSize:       s.Pool.Size(),
		AvgServiceTime: s.Recorder.AverageAt(MetricServiceTime, t),
		AvgQueueTime:   s.Recorder.AverageAt(MetricQueueTime, t),
		RequestRate:    s.Recorder.RequestRateAt(t),
		Stock:          s.Pool.StockAvailable(),
		AvgBinsChecked: s.Recorder.AverageAt(MetricBinsChecked, t),
		AvgUtilization: s.Pool.AvgUtilization(since, t),
		Time:           t,
	}
}

func (s *Simulator) handleAdaptTick(a *AdaptTickAction) error {
	obs := s.Observe(a.Time)
	n := s.Controller.Adapt(obs)
	if n < 1 {
		panic(fmt.Sprintf("controller %T returned pool size %d", s.Controller, n))
	}
	s.Summary.AdaptTicks++

	ready, err := s.Pool.Reshape(n, a.Time)
	if err != nil {
		return err
	}
	if n != obs.PoolSize {
		s.Summary.Resizes++
		if err := s.Recorder.RecordPoolSize(n, ready); err != nil {
			return err
		}
	}
	s.Trace.RecordAdapt(trace.AdaptRecord{
		Clock:       a.Time,
		Policy:      s.policy,
		OldSize:     obs.PoolSize,
		NewSize:     n,
		ReadyAt:     ready,
		Utilization: obs.AvgUtilization,
		QueueTime:   obs.AvgQueueTime,
		ServiceTime: obs.AvgServiceTime,
		RequestRate: obs.RequestRate,
		BinsChecked: obs.AvgBinsChecked,
		Stock:       obs.Stock,
	})

	if next := a.Time + s.interval; next <= s.End {
		s.Schedule(&AdaptTickAction{Time: next})
	}
	return nil
}
