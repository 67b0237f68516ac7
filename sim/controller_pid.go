package sim

// PIController is the proportional-integral variant.
//
// Its error is measured as utilization minus setpoint, the opposite sign of
// PIDController; both conventions are kept selectable as they are.
type PIController struct {
	Kp       float64
	Ki       float64
	Setpoint float64

	accumulated float64
}

// NewPIController returns a PI controller with setpoint 0.1, Kp 5 and Ki 0.4.
func NewPIController() *PIController {
	return &PIController{Kp: 5, Ki: 0.4, Setpoint: 0.1}
}

// Adapt returns round(Kp*err + Ki*sum(err)) + current size.
func (c *PIController) Adapt(obs Observation) int {
	err := obs.AvgUtilization - c.Setpoint
	c.accumulated += err
	return decide(c.Kp*err+c.Ki*c.accumulated, obs.PoolSize)
}

// PIDController is the canonical controller: error = setpoint - utilization,
// integral clamped to [IMin, IMax] (anti-windup), derivative over the time
// since the previous call.
type PIDController struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Setpoint float64
	IMin     float64
	IMax     float64

	accumulated float64
	prevErr     float64
	prevTime    float64
}

// NewPIDController builds a PID controller from its configuration.
func NewPIDController(cfg PIDConfig) *PIDController {
	return &PIDController{
		Kp:       cfg.Kp,
		Ki:       cfg.Ki,
		Kd:       cfg.Kd,
		Setpoint: cfg.Setpoint,
		IMin:     cfg.IMin,
		IMax:     cfg.IMax,
	}
}

// Adapt returns round(Kp*err + Ki*clamp(integral) + Kd*derivative) + current size.
// A zero time step is treated as 1.
func (c *PIDController) Adapt(obs Observation) int {
	err := c.Setpoint - obs.AvgUtilization
	c.accumulated = min(c.IMax, max(c.IMin, c.accumulated+err))

	dt := obs.Time - c.prevTime
	if dt == 0 {
		dt = 1
	}
	derivative := (err - c.prevErr) / dt

	c.prevErr = err
	c.prevTime = obs.Time
	return decide(c.Kp*err+c.Ki*c.accumulated+c.Kd*derivative, obs.PoolSize)
}

// Integral returns the clamped accumulated error.
func (c *PIDController) Integral() float64 {
	return c.accumulated
}
