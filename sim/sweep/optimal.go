package sweep

import (
	"fmt"
	"math"
	"slices"
)

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	out[n-1] = stop
	return out
}

// DefaultCandidates is the set-point search space: 100 points in [0.0025, 0.1].
func DefaultCandidates() []float64 {
	return Linspace(0.0025, 0.1, 100)
}

func rates(rows []Row) []float64 {
	var out []float64
	for _, r := range rows {
		if !slices.Contains(out, r.ArrivalRate) {
			out = append(out, r.ArrivalRate)
		}
	}
	slices.Sort(out)
	return out
}

// bestResponseTime is the lowest response time measured at rate.
func bestResponseTime(rows []Row, rate float64) float64 {
	best := math.Inf(1)
	for _, r := range rows {
		if r.ArrivalRate == rate {
			best = min(best, r.ResponseTime)
		}
	}
	return best
}

// responseAtUtilization is the response time of the row at rate whose
// utilization is closest to target. Ties keep the earlier row.
func responseAtUtilization(rows []Row, rate, target float64) (float64, error) {
	closest := math.Inf(1)
	resp := -1.0
	for _, r := range rows {
		if r.ArrivalRate != rate {
			continue
		}
		if d := math.Abs(r.Utilization - target); d < closest {
			closest = d
			resp = r.ResponseTime
		}
	}
	if resp < 0 {
		return 0, fmt.Errorf("no measurement at arrival rate %v", rate)
	}
	return resp, nil
}

// Regret sums, over every arrival rate, how much slower the pool closest to
// target utilization is than the fastest pool measured at that rate.
func Regret(rows []Row, target float64) (float64, error) {
	total := 0.0
	for _, rate := range rates(rows) {
		resp, err := responseAtUtilization(rows, rate, target)
		if err != nil {
			return 0, err
		}
		total += resp - bestResponseTime(rows, rate)
	}
	return total, nil
}

// OptimalUtilization returns the candidate with the lowest Regret. Ties keep
// the earlier candidate.
func OptimalUtilization(rows []Row, candidates []float64) (float64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("no sweep rows")
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no candidate set-points")
	}
	best, bestRegret := candidates[0], math.Inf(1)
	for _, c := range candidates {
		regret, err := Regret(rows, c)
		if err != nil {
			return 0, err
		}
		if regret < bestRegret {
			best, bestRegret = c, regret
		}
	}
	return best, nil
}

// RegretCurve returns Regret for every candidate, scaled to [0, 1].
// A flat curve is all zeros.
func RegretCurve(rows []Row, candidates []float64) ([]float64, error) {
	curve := make([]float64, len(candidates))
	for i, c := range candidates {
		regret, err := Regret(rows, c)
		if err != nil {
			return nil, err
		}
		curve[i] = regret
	}
	if len(curve) == 0 {
		return curve, nil
	}
	lo := slices.Min(curve)
	for i := range curve {
		curve[i] -= lo
	}
	if hi := slices.Max(curve); hi > 0 {
		for i := range curve {
			curve[i] /= hi
		}
	}
	return curve, nil
}
