package health

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func benchRegistry(n int) *Registry {
	checkers := make([]Checker, n)
	for i := range checkers {
		checkers[i] = okCheck(fmt.Sprintf("check%d", i))
	}
	return MustRegistry(checkers...)
}

// BenchmarkExecutor_Execute_Sequential measures a sequential cycle.
func BenchmarkExecutor_Execute_Sequential(b *testing.B) {
	reg := benchRegistry(5)
	e := NewExecutor()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Execute(ctx, reg)
	}
}

// BenchmarkExecutor_Execute_Parallel measures a parallel cycle.
func BenchmarkExecutor_Execute_Parallel(b *testing.B) {
	reg := benchRegistry(5)
	e := NewExecutor(WithParallel(0))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Execute(ctx, reg)
	}
}

// BenchmarkExecutor_Execute_Panic measures the recovery path.
func BenchmarkExecutor_Execute_Panic(b *testing.B) {
	reg := MustRegistry(NewCheck("boom", func(context.Context) Signal { panic("boom") }))
	e := NewExecutor()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Execute(ctx, reg)
	}
}

// BenchmarkFormat measures formatting a failure outcome.
func BenchmarkFormat(b *testing.B) {
	raw := RawOutcome{Name: "disk", ElapsedMicros: 1234, Signal: Failure{Reason: "disk full"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Format(raw)
	}
}

// BenchmarkEncoders compares document encoders.
func BenchmarkEncoders(b *testing.B) {
	r := NewReporter(benchRegistry(10))
	outcomes := r.Outcomes(context.Background())

	for _, enc := range []Encoder{JSONEncoder{}, JSONIterEncoder{}, YAMLEncoder{}} {
		b.Run(fmt.Sprintf("%T", enc), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = enc.Encode(outcomes)
			}
		})
	}
}

// BenchmarkHandler_Checks measures the checks route end to end.
func BenchmarkHandler_Checks(b *testing.B) {
	h := NewHandler(NewReporter(benchRegistry(5)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		h.ServeHTTP(rec, req)
	}
}
