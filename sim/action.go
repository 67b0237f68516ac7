package sim

// Action is a pending simulation action. The set of actions is closed: only
// the types in this file implement it, and the Simulator dispatches on them
// with an exhaustive type switch.
type Action interface {
	Timestamp() float64
	isAction()
}

// RequestAction is a workload request to reserve Quantity units.
type RequestAction struct {
	ID       int
	Quantity int
	Time     float64
}

// RestockAction is a workload restock of Quantity units spread over every bin.
type RestockAction struct {
	ID       int
	Quantity int
	Time     float64
}

// RetryAction carries an under-fulfilled request on to its next bin.
// Bins are probed round-robin starting from FirstBin.
type RetryAction struct {
	Original    RequestAction
	Reserved    int     // units held so far
	FirstBin    int     // bin probed by the original request
	BinsChecked int     // bins probed so far
	QueueTime   float64 // accumulated queue time
	ServiceTime float64 // accumulated service time
	Time        float64
}

// ReturnAction gives up on a request and puts back what it had reserved.
type ReturnAction struct {
	Original    RequestAction
	Quantity    int // units to restore
	QueueTime   float64
	ServiceTime float64
	BinsChecked int
	Time        float64
}

// AdaptTickAction asks the controller for a new pool size.
type AdaptTickAction struct {
	Time float64
}

func (a *RequestAction) Timestamp() float64   { return a.Time }
func (a *RestockAction) Timestamp() float64   { return a.Time }
func (a *RetryAction) Timestamp() float64     { return a.Time }
func (a *ReturnAction) Timestamp() float64    { return a.Time }
func (a *AdaptTickAction) Timestamp() float64 { return a.Time }

func (*RequestAction) isAction()   {}
func (*RestockAction) isAction()   {}
func (*RetryAction) isAction()     {}
func (*ReturnAction) isAction()    {}
func (*AdaptTickAction) isAction() {}
