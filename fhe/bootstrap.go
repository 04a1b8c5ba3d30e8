package fhe

import (
	"github.com/privacyfl/hec/herrors"
	"github.com/privacyfl/hec/rlwe"
)

// Refresher is the interface package bootstrap's Bootstrapper satisfies.
// fhe depends on this interface rather than on package bootstrap directly,
// since bootstrap depends on rlwe/keyswitch/noise the same way fhe does,
// and fhe calling bootstrap directly would need bootstrap to call back
// into fhe for nothing bootstrap actually needs — keeping the dependency
// one-directional (callers wire a *bootstrap.Bootstrapper in) avoids an
// import cycle while still letting Scheme auto-refresh.
type Refresher interface {
	Refresh(ct *rlwe.Ciphertext, bk *rlwe.BootstrapKey) (*rlwe.Ciphertext, error)
}

// SetRefresher wires a Refresher (normally a *bootstrap.Bootstrapper) into
// the Scheme so that EnsureReady can transparently bootstrap a ciphertext
// that has crossed its noise threshold before returning it to the caller.
func (s *Scheme) SetRefresher(r Refresher) {
	s.refresher = r
}

// EnsureReady returns ct unchanged if it is not flagged NeedsBootstrap,
// otherwise refreshes it via the wired Refresher (failing fatally with
// BootstrapRequired if none is set), per the spec's control-flow note that
// NoiseMgr is consulted before each operation and Bootstrapper refreshes
// the ciphertext before the operation proceeds.
func (s *Scheme) EnsureReady(ct *rlwe.Ciphertext, bk *rlwe.BootstrapKey) (*rlwe.Ciphertext, error) {
	if ct.State != rlwe.NeedsBootstrap {
		return ct, nil
	}
	if s.refresher == nil {
		return nil, herrors.New(herrors.BootstrapRequired, "fhe: ciphertext needs bootstrapping but no Refresher is configured")
	}
	return s.refresher.Refresh(ct, bk)
}
