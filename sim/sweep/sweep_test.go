package sweep

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binsim/binsim/sim"
	"github.com/binsim/binsim/sim/workload"
)

func smallSweep() Config {
	gen := workload.DefaultGeneratorSpec()
	gen.NumRecords = 200
	return Config{
		Experiment:   sim.DefaultExperimentConfig(),
		Generator:    gen,
		ArrivalRates: []float64{2, 5},
		MaxBins:      3,
	}
}

func TestRun_OneRowPerRateAndBinCount(t *testing.T) {
	logrus.SetLevel(logrus.WarnLevel)

	rows, err := Run(smallSweep())

	require.NoError(t, err)
	require.Len(t, rows, 6)
	i := 0
	for _, rate := range []float64{2, 5} {
		for bins := 1; bins <= 3; bins++ {
			assert.Equal(t, rate, rows[i].ArrivalRate)
			assert.Equal(t, bins, rows[i].Bins)
			assert.GreaterOrEqual(t, rows[i].Utilization, 0.0)
			assert.LessOrEqual(t, rows[i].Utilization, 1.0)
			assert.GreaterOrEqual(t, rows[i].ResponseTime, 0.0)
			i++
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	logrus.SetLevel(logrus.WarnLevel)

	a, err := Run(smallSweep())
	require.NoError(t, err)
	b, err := Run(smallSweep())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no rates", func(c *Config) { c.ArrivalRates = nil }},
		{"zero rate", func(c *Config) { c.ArrivalRates = []float64{1, 0} }},
		{"no bins", func(c *Config) { c.MaxBins = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallSweep()
			tt.mutate(&cfg)
			_, err := Run(cfg)
			assert.Error(t, err)
		})
	}
}

func TestRows_RoundTrip(t *testing.T) {
	rows := syntheticRows()
	var buf bytes.Buffer

	require.NoError(t, WriteRows(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "arrival_rate,bins,utilization,response_time\n"))

	parsed, err := ReadRows(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, parsed)
}

func TestReadRows_Errors(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = ReadRows(strings.NewReader("arrival_rate,bins,utilization,response_time\n1,2,x,4\n"))
	assert.Error(t, err)
}
