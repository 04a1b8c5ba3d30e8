package ring

import "github.com/privacyfl/hec/arith"

// SampleUniform fills a fresh coefficient-domain Poly with values drawn
// uniformly from [0, Q), using prng as entropy (arith.DefaultPRNG if nil).
func (r *Ring) SampleUniform(prng arith.PRNG) (*Poly, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	p := r.NewPoly()
	for i := 0; i < r.N; i++ {
		v, err := arith.UniformUint64(prng, r.Q)
		if err != nil {
			return nil, err
		}
		p.Coeffs[i] = v
	}
	return p, nil
}

// SampleTernary fills a fresh coefficient-domain Poly with coefficients in
// {-1, 0, 1} (represented in [0, Q) as {Q-1, 0, 1}), used for BGV secret
// keys.
func (r *Ring) SampleTernary(prng arith.PRNG) (*Poly, error) {
	if prng == nil {
		prng = arith.DefaultPRNG
	}
	p := r.NewPoly()
	for i := 0; i < r.N; i++ {
		v, err := arith.TernarySample(prng)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			p.Coeffs[i] = r.Q - 1
		} else {
			p.Coeffs[i] = uint64(v)
		}
	}
	return p, nil
}

// SampleGaussian fills a fresh coefficient-domain Poly with discrete
// Gaussian noise of standard deviation sigma (the spec's default is 3.2).
func (r *Ring) SampleGaussian(prng arith.PRNG, sigma float64) (*Poly, error) {
	sampler := arith.NewGaussianSampler(prng, sigma)
	p := r.NewPoly()
	for i := 0; i < r.N; i++ {
		v, err := sampler.Sample()
		if err != nil {
			return nil, err
		}
		if v < 0 {
			p.Coeffs[i] = arith.SubMod64(0, uint64(-v)%r.Q, r.Q)
		} else {
			p.Coeffs[i] = uint64(v) % r.Q
		}
	}
	return p, nil
}
