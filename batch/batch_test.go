package batch_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tanhfit/batch"
	"github.com/katalvlaran/tanhfit/lmfit"
	"github.com/katalvlaran/tanhfit/profile"
)

// jobs builds n exact series whose centers drift with the job index.
func jobs(n int) []batch.Job {
	x := make([]float64, 21)
	for i := range x {
		x[i] = -5 + 0.5*float64(i)
	}
	out := make([]batch.Job, n)
	for i := range out {
		shift := 0.1 * float64(i%5)
		truth := profile.Coeffs{-1 + shift, 1 + shift, 0.5, 0, 1}
		out[i] = batch.Job{
			Name:  fmt.Sprintf("job-%02d", i),
			X:     x,
			Y:     profile.Curve(x, truth, nil),
			Start: []float64{-1.3 + shift, 1.3 + shift, 0.8, -0.05, 1.05},
		}
	}

	return out
}

type countingObserver struct {
	mu    sync.Mutex
	calls int
}

func (o *countingObserver) Observe(*lmfit.Result, time.Duration) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()
}

func TestRun_MatchesSequentialFits(t *testing.T) {
	js := jobs(12)
	obs := &countingObserver{}

	outcomes, err := batch.Run(context.Background(), js, batch.Options{
		Fit:      lmfit.DefaultOptions(),
		Limit:    4,
		Observer: obs,
	})
	require.NoError(t, err)
	require.Len(t, outcomes, len(js))
	assert.Equal(t, len(js), obs.calls)
	assert.Zero(t, batch.Failed(outcomes))

	for i, o := range outcomes {
		require.NoError(t, o.Err, o.Name)
		assert.Equal(t, js[i].Name, o.Name)

		c := append([]float64(nil), js[i].Start...)
		res, err := lmfit.Fit(js[i].X, js[i].Y, c, nil)
		require.NoError(t, err)
		assert.Equal(t, c, o.Coeffs, o.Name)
		assert.Equal(t, res.Iterations, o.Result.Iterations, o.Name)
	}
}

func TestRun_StartIsNotModified(t *testing.T) {
	js := jobs(3)
	before := append([]float64(nil), js[0].Start...)

	_, err := batch.Run(context.Background(), js, batch.Options{Fit: lmfit.DefaultOptions()})
	require.NoError(t, err)
	assert.Equal(t, before, js[0].Start)
}

func TestRun_BadJobDoesNotStopOthers(t *testing.T) {
	js := jobs(3)
	js[1].X, js[1].Y = js[1].X[:5], js[1].Y[:5]

	outcomes, err := batch.Run(context.Background(), js, batch.Options{Fit: lmfit.DefaultOptions()})
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[1].Err, lmfit.ErrDegreesOfFreedom)
	assert.Nil(t, outcomes[1].Result)
	assert.Equal(t, js[1].Start, outcomes[1].Coeffs)
	assert.NoError(t, outcomes[0].Err)
	assert.NoError(t, outcomes[2].Err)
	assert.Equal(t, 1, batch.Failed(outcomes))
}

type cancelAfterFirst struct {
	cancel context.CancelFunc
}

func (o cancelAfterFirst) Observe(*lmfit.Result, time.Duration) { o.cancel() }

func TestRun_CancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outcomes, err := batch.Run(ctx, jobs(3), batch.Options{
		Fit:      lmfit.DefaultOptions(),
		Limit:    1,
		Observer: cancelAfterFirst{cancel: cancel},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 3)
	require.NoError(t, outcomes[0].Err)
	assert.NotNil(t, outcomes[0].Result)
	for _, o := range outcomes[1:] {
		assert.ErrorIs(t, o.Err, context.Canceled, o.Name)
		assert.Nil(t, o.Result)
	}
	assert.Equal(t, 2, batch.Failed(outcomes))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := batch.Run(ctx, jobs(4), batch.Options{Fit: lmfit.DefaultOptions()})
	require.ErrorIs(t, err, context.Canceled)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled, o.Name)
	}
	assert.Equal(t, 4, batch.Failed(outcomes))
}

func TestRun_TraceLinesCarryJobName(t *testing.T) {
	js := jobs(3)
	var buf bytes.Buffer
	fo := lmfit.DefaultOptions()
	fo.Trace = true
	fo.Sink = &buf

	outcomes, err := batch.Run(context.Background(), js, batch.Options{Fit: fo, Limit: 3})
	require.NoError(t, err)

	perJob := map[string]int{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		name, _ := m["job"].(string)
		perJob[name]++
	}
	for _, o := range outcomes {
		// one line per attempted step plus the summary
		assert.Equal(t, o.Result.Evaluations+1, perJob[o.Name], o.Name)
	}
}
