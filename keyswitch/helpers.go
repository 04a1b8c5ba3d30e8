package keyswitch

import (
	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/crt"
	"github.com/privacyfl/hec/ring"
)

func sampleUniform(basis *crt.Basis, prng arith.PRNG) (*crt.Polynomial, error) {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		p, err := r.SampleUniform(prng)
		if err != nil {
			return nil, err
		}
		limbs[i] = p
	}
	return &crt.Polynomial{Limbs: limbs}, nil
}

func sampleTernary(basis *crt.Basis, prng arith.PRNG) (*crt.Polynomial, error) {
	n := basis.Rings[0].N
	vals := make([]int64, n)
	for i := range vals {
		v, err := arith.TernarySample(prng)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return liftSmall(basis, vals), nil
}

func sampleGaussian(basis *crt.Basis, prng arith.PRNG, sigma float64) (*crt.Polynomial, error) {
	n := basis.Rings[0].N
	sampler := arith.NewGaussianSampler(prng, sigma)
	vals, err := sampler.SampleVector(n)
	if err != nil {
		return nil, err
	}
	return liftSmall(basis, vals), nil
}

// liftSmall reduces a slice of small signed integers modulo each prime in
// the basis independently, producing one Poly per limb. Duplicated from
// package rlwe's identically-named helper rather than shared, since this
// package must not import rlwe (rlwe imports keyswitch for evaluation-key
// generation).
func liftSmall(basis *crt.Basis, vals []int64) *crt.Polynomial {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		poly := r.NewPoly()
		for j, v := range vals {
			if v < 0 {
				poly.Coeffs[j] = r.Q - (uint64(-v) % r.Q)
				if poly.Coeffs[j] == r.Q {
					poly.Coeffs[j] = 0
				}
			} else {
				poly.Coeffs[j] = uint64(v) % r.Q
			}
		}
		limbs[i] = poly
	}
	return &crt.Polynomial{Limbs: limbs}
}

func negate(basis *crt.Basis, x *crt.Polynomial) *crt.Polynomial {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		out := r.NewPoly()
		r.Negate(x.Limbs[i], out)
		limbs[i] = out
	}
	return &crt.Polynomial{Limbs: limbs}
}

func scale(basis *crt.Basis, x *crt.Polynomial, scalar uint64) *crt.Polynomial {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		out := r.NewPoly()
		r.MulScalar(x.Limbs[i], scalar, out)
		limbs[i] = out
	}
	return &crt.Polynomial{Limbs: limbs}
}
