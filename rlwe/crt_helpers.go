package rlwe

import (
	"github.com/privacyfl/hec/arith"
	"github.com/privacyfl/hec/crt"
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/ring"
)

// SampleTernaryCRT draws a single ternary polynomial (coefficients in
// {-1,0,1}) and lifts it into every limb of the basis consistently: the
// same small-coefficient polynomial is reduced modulo each prime, since a
// secret or error polynomial is a single object across the RNS
// representation, not an independently-sampled value per limb.
func SampleTernaryCRT(basis *crt.Basis, prng arith.PRNG) (*crt.Polynomial, error) {
	n := basis.Rings[0].N
	signs := make([]int64, n)
	for i := range signs {
		v, err := arith.TernarySample(prng)
		if err != nil {
			return nil, err
		}
		signs[i] = v
	}
	return LiftSmallCRT(basis, signs), nil
}

// SampleGaussianCRT draws a single discrete Gaussian polynomial and lifts
// it across every limb of the basis, for the same reason as
// SampleTernaryCRT.
func SampleGaussianCRT(basis *crt.Basis, prng arith.PRNG, sigma float64) (*crt.Polynomial, error) {
	n := basis.Rings[0].N
	sampler := arith.NewGaussianSampler(prng, sigma)
	vals, err := sampler.SampleVector(n)
	if err != nil {
		return nil, err
	}
	return LiftSmallCRT(basis, vals), nil
}

// SampleUniformCRT draws an independent uniform polynomial per limb (the
// "a" component of a public key or a key-switching key needs no
// cross-limb consistency beyond what the RNS basis already enforces).
func SampleUniformCRT(basis *crt.Basis, prng arith.PRNG) (*crt.Polynomial, error) {
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

// LiftSmallCRT reduces a slice of small signed integers modulo each prime
// in the basis independently, producing one Poly per limb.
func LiftSmallCRT(basis *crt.Basis, vals []int64) *crt.Polynomial {
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

// NegateCRT negates a CRT polynomial limb-by-limb.
func NegateCRT(basis *crt.Basis, x *crt.Polynomial) *crt.Polynomial {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		out := r.NewPoly()
		r.Negate(x.Limbs[i], out)
		limbs[i] = out
	}
	return &crt.Polynomial{Limbs: limbs}
}

// ScaleCRT multiplies a CRT polynomial by a scalar (reduced independently
// modulo each limb's prime), used to scale s^2 by w^i during evaluation-key
// generation.
func ScaleCRT(basis *crt.Basis, x *crt.Polynomial, scalar uint64) *crt.Polynomial {
	limbs := make([]*ring.Poly, len(basis.Rings))
	for i, r := range basis.Rings {
		out := r.NewPoly()
		r.MulScalar(x.Limbs[i], scalar, out)
		limbs[i] = out
	}
	return &crt.Polynomial{Limbs: limbs}
}

// MarshalCRT concatenates the little-endian serialization of every limb,
// used to derive a key Fingerprint deterministically from secret material.
func MarshalCRT(x *crt.Polynomial) ([]byte, error) {
	var out []byte
	for _, limb := range x.Limbs {
		b, err := limb.MarshalBinary()
		if err != nil {
			return nil, herrors.Wrap(herrors.Internal, "rlwe: marshaling CRT polynomial limb", err)
		}
		out = append(out, b...)
	}
	return out, nil
}
