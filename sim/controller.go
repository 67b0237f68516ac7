package sim

import (
	"fmt"
	"math"
)

// Observation is the snapshot of recent metrics a Controller decides from.
type Observation struct {
	PoolSize       int     // current number of bins
	AvgServiceTime float64 // recorder average at Time
	AvgQueueTime   float64 // recorder average at Time
	RequestRate    float64 // recorder estimate at Time
	Stock          int     // pool stock on hand
	AvgBinsChecked float64 // recorder average at Time
	AvgUtilization float64 // mean bin utilization over the last sample window
	Time           float64 // simulated time of the decision
}

//go:generate mockgen -source=controller.go -destination=mock_controller_test.go -package=sim -self_package=github.com/binsim/binsim/sim -write_package_comment=false

// Controller decides the next pool size from an Observation.
// Implementations must return a value >= 1.
//
// Implementations:
//   - PIController: proportional-integral on utilization
//   - PIDController: PID on utilization with a clamped integral
//   - DummyController: fixed step schedule, for baselines
//   - StaticController: keeps the current size
type Controller interface {
	Adapt(obs Observation) int
}

// ValidControllerPolicies is the set of recognized controller policy names.
// Shared by ControllerConfig.Validate and NewController.
var ValidControllerPolicies = map[string]bool{"": true, "pi": true, "pid": true, "dummy": true, "static": true}

// NewController builds the controller named by cfg.Policy. An empty policy
// selects "pid".
func NewController(cfg ControllerConfig) (Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Policy {
	case "pi":
		return &PIController{Kp: cfg.PI.Kp, Ki: cfg.PI.Ki, Setpoint: cfg.PI.Setpoint}, nil
	case "", "pid":
		return NewPIDController(cfg.PID), nil
	case "dummy":
		return &DummyController{Threshold: cfg.Dummy.Threshold, Bins: cfg.Dummy.Bins}, nil
	case "static":
		return StaticController{}, nil
	default:
		panic(fmt.Sprintf("NewController: unhandled policy %q", cfg.Policy))
	}
}

// decide applies a control signal to the current size and enforces the
// floor of one bin. Rounding is half-to-even.
func decide(signal float64, current int) int {
	return max(1, int(math.RoundToEven(signal))+current)
}

// StaticController never changes the pool size.
type StaticController struct{}

// Adapt returns the current pool size.
func (StaticController) Adapt(obs Observation) int {
	return max(1, obs.PoolSize)
}

// DummyController returns one bin until Threshold, then Bins.
type DummyController struct {
	Threshold float64
	Bins      int
}

// Adapt follows the fixed schedule.
func (c *DummyController) Adapt(obs Observation) int {
	if obs.Time > c.Threshold {
		return max(1, c.Bins)
	}
	return 1
}
