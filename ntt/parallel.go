package ntt

import (
	"context"

	"github.com/privacyfl/hec/workerpool"
)

// ParallelTransform computes the forward NTT of each polynomial in polys
// concurrently across pool, producing bit-exact output equivalent to
// calling Transform serially on each one. It satisfies the "chunked
// parallel transform" contract from the spec: the work partitioned across
// workers here is at the granularity of whole polynomials (the natural unit
// when a caller needs many independent transforms, e.g. one per CRT limb or
// one per ciphertext half), rather than splitting a single transform's
// butterfly layers, since that finer split would require synchronizing
// workers between every butterfly stage and defeat the purpose of
// offloading.
func (p *Params) ParallelTransform(ctx context.Context, pool *workerpool.Pool, polys [][]uint64) ([][]uint64, error) {
	results := make([][]uint64, len(polys))
	errs := make([]error, len(polys))

	tasks := make([]func(context.Context) error, len(polys))
	for i := range polys {
		i := i
		tasks[i] = func(context.Context) error {
			out, err := p.Transform(polys[i])
			results[i] = out
			errs[i] = err
			return err
		}
	}

	if err := pool.Run(ctx, tasks); err != nil {
		return nil, err
	}
	return results, nil
}

// ParallelInverseTransform is the ParallelTransform counterpart for
// InverseTransform.
func (p *Params) ParallelInverseTransform(ctx context.Context, pool *workerpool.Pool, evals [][]uint64) ([][]uint64, error) {
	results := make([][]uint64, len(evals))

	tasks := make([]func(context.Context) error, len(evals))
	for i := range evals {
		i := i
		tasks[i] = func(context.Context) error {
			out, err := p.InverseTransform(evals[i])
			results[i] = out
			return err
		}
	}

	if err := pool.Run(ctx, tasks); err != nil {
		return nil, err
	}
	return results, nil
}
