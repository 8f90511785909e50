package coa2pdf

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Concurrency bounds for simultaneous exports. Each export owns one Chrome
// process (~200MB), so the cap is about memory, not CPU.
const (
	MinConcurrency = 1
	MaxConcurrency = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrAtCapacity indicates no export slot became free before the deadline.
var ErrAtCapacity = errors.New("export capacity exhausted")

// ResolveConcurrency determines how many exports may run at once.
// Priority: explicit value > GOMAXPROCS-based calculation (adjusted by
// automaxprocs for containers).
func ResolveConcurrency(n int) int {
	if n > 0 {
		return n
	}

	c := runtime.GOMAXPROCS(0) / cpuDivisor
	if c < MinConcurrency {
		return MinConcurrency
	}
	if c > MaxConcurrency {
		return MaxConcurrency
	}
	return c
}

// Limiter caps concurrent exports across requests. It bounds how many
// engines exist at once; it never shares an engine between calls.
type Limiter struct {
	sem  *semaphore.Weighted
	size int
}

// NewLimiter creates a Limiter with ResolveConcurrency(n) slots.
func NewLimiter(n int) *Limiter {
	size := ResolveConcurrency(n)
	return &Limiter{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Acquire blocks until a slot is free or ctx is done. The returned release
// function must be called exactly once.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAtCapacity, err)
	}
	return func() { l.sem.Release(1) }, nil
}

// Size returns the number of slots.
func (l *Limiter) Size() int {
	return l.size
}
