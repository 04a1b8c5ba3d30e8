// Package noise implements the per-ciphertext noise-budget estimate from
// the spec's NoiseMgr component: a closed-form bound updated after every
// ciphertext operation, plus an operations-since-fresh fallback heuristic
// used by Bootstrapper and the fhe package to decide when a ciphertext
// needs refreshing before it can be used again.
//
// The estimate tracks log2 of the noise magnitude rather than the
// magnitude itself, since at the high security tiers (n=16384, q≈2^438)
// the true magnitude overflows float64; github.com/ALTree/bigfloat
// supplies the big.Float Log2/Pow this requires.
package noise

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

// Estimate is an opaque noise-budget value: log2 of the estimated noise
// magnitude. It only ever increases across the operations defined here,
// matching the spec's "monotone non-decreasing" requirement.
type Estimate struct {
	log2Bits float64
}

// Fresh returns the noise estimate for a newly encrypted ciphertext, whose
// noise is dominated by the Gaussian error term e added at encryption:
// log2(noise) ~= log2(sigma * sqrt(n) * boundSigmas).
func Fresh(n int, sigma float64) Estimate {
	magnitude := sigma * boundSigmas * sqrtFloat(n)
	return Estimate{log2Bits: log2(magnitude)}
}

const boundSigmas = 6.0

// AfterAdd returns the estimate after homomorphically adding two
// ciphertexts with noise estimates a and b: worst case the noises add,
// so the bound grows by at most one bit (log2(x+y) <= max(log2 x, log2 y) + 1).
func AfterAdd(a, b Estimate) Estimate {
	m := a.log2Bits
	if b.log2Bits > m {
		m = b.log2Bits
	}
	return Estimate{log2Bits: m + 1}
}

// AfterScalarMultiply returns the estimate after multiplying a ciphertext
// by a plaintext scalar bounded by t: the noise scales by the scalar's
// magnitude.
func AfterScalarMultiply(a Estimate, t uint64) Estimate {
	return Estimate{log2Bits: a.log2Bits + log2(float64(t))}
}

// AfterMultiply returns the estimate after homomorphically multiplying two
// ciphertexts with noise estimates a and b under ring degree n and
// plaintext modulus t: ciphertext-ciphertext multiplication roughly
// squares the noise and scales by the ring expansion factor t*sqrt(n),
// following the standard BGV noise-growth bound used by the teacher
// library's rlwe parameter documentation.
func AfterMultiply(a, b Estimate, n int, t uint64) Estimate {
	expansion := log2(float64(t)) + 0.5*log2(float64(n))
	return Estimate{log2Bits: a.log2Bits + b.log2Bits + expansion}
}

// AfterKeySwitch returns the estimate after a key-switch (relinearization
// or rotation) with decomposition length ell and base w: each of the ell
// digit terms contributes independent key-switching-key noise, so the
// bound grows additively in log2(ell) plus a constant term for the
// key-switching key's own Gaussian noise.
func AfterKeySwitch(a Estimate, ell int, sigma float64) Estimate {
	ksNoise := log2(sigma*boundSigmas) + log2(float64(ell))
	return Estimate{log2Bits: maxFloat(a.log2Bits, ksNoise) + 1}
}

// Reset returns the estimate for a ciphertext immediately after
// bootstrapping: noise is reset to a small constant dominated by the
// bootstrap circuit's own rounding error, independent of the input
// ciphertext's prior noise.
func Reset(n int, sigma float64) Estimate {
	return Fresh(n, sigma)
}

// Bits returns the estimate's log2 magnitude, for display/metrics.
func (e Estimate) Bits() float64 { return e.log2Bits }

// FromBits reconstructs an Estimate from a previously stored log2
// magnitude, e.g. rlwe.Ciphertext.Noise after a round trip through
// serialization.
func FromBits(bits float64) Estimate { return Estimate{log2Bits: bits} }

// ShouldBootstrap reports whether the estimate has reached or exceeded the
// configured threshold (given as a log2-bits budget), or whether
// opsSinceFresh has reached the fallback operation-count heuristic.
func ShouldBootstrap(e Estimate, thresholdBits float64, opsSinceFresh, maxOpsSinceFresh int) bool {
	if e.log2Bits >= thresholdBits {
		return true
	}
	if maxOpsSinceFresh > 0 && opsSinceFresh >= maxOpsSinceFresh {
		return true
	}
	return false
}

func log2(x float64) float64 {
	if x <= 0 {
		return 0
	}
	bf := bigfloat.Log2(big.NewFloat(x))
	v, _ := bf.Float64()
	return v
}

func sqrtFloat(n int) float64 {
	bf := bigfloat.Sqrt(big.NewFloat(float64(n)))
	v, _ := bf.Float64()
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
