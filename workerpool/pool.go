// Package workerpool provides the shared goroutine pool that offloadable,
// pure ring-level operations (NTT butterfly layers, per-coefficient batch
// arithmetic, key-switching digit decomposition) fan out across. It is
// deliberately the only concurrency primitive the rest of the repository
// reaches for: callers hand it pure functions and never see a raw goroutine.
package workerpool

import (
	"context"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-capacity dispatcher for CPU-bound, side-effect-free work
// items. It owns no long-lived goroutines; Size merely bounds how many
// concurrent tasks errgroup is allowed to run at once.
type Pool struct {
	size int
}

// New creates a Pool sized to the logical CPU count reported by cpuid, or to
// size if a positive value is given explicitly.
func New(size int) *Pool {
	if size <= 0 {
		size = cpuid.CPU.LogicalCores
		if size <= 0 {
			size = 1
		}
	}
	return &Pool{size: size}
}

// Size returns the pool's worker capacity.
func (p *Pool) Size() int {
	return p.size
}

// Run fans tasks out across the pool's capacity and waits for all of them to
// complete, returning the first error encountered (subsequent tasks already
// in flight are allowed to finish; errgroup cancels the derived context so
// tasks that check ctx.Err() can bail out early).
func (p *Pool) Run(ctx context.Context, tasks []func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			return task(gctx)
		})
	}
	return g.Wait()
}

// Partition splits n items into at most p.Size() contiguous chunks and
// returns their [start, end) bounds, used by callers that want to divide a
// slice of polynomial coefficients across workers without an intermediate
// allocation per item.
func (p *Pool) Partition(n int) [][2]int {
	if n <= 0 {
		return nil
	}
	workers := p.size
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	bounds := make([][2]int, 0, workers)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}
