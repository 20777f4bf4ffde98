package batch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/katalvlaran/tanhfit/batch"
	"github.com/katalvlaran/tanhfit/dataset"
	"github.com/katalvlaran/tanhfit/lmfit"
	"github.com/katalvlaran/tanhfit/profile"
)

func BenchmarkRun_64x201(b *testing.B) {
	truth := profile.Coeffs{-1, 1, 0.5, 0, 1}
	js := make([]batch.Job, 64)
	for i := range js {
		s, err := dataset.Synthesize(truth, -5, 5, 201, int64(i), dataset.WithNoise(0.02))
		if err != nil {
			b.Fatal(err)
		}
		js[i] = batch.Job{Name: fmt.Sprint(i), X: s.X, Y: s.Y, Start: []float64{-1.2, 1.2, 0.7, 0.05, 0.95}}
	}
	opts := batch.Options{Fit: lmfit.DefaultOptions()}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := batch.Run(context.Background(), js, opts); err != nil {
			b.Fatal(err)
		}
	}
}
