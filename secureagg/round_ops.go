package secureagg

import (
	"github.com/holiman/uint256"

	"github.com/privacyfl/hec/herrors"
)

// SubmitMaskedUpdate accepts one client's masked weight update together with
// the reconstruction shares it is handing back to the coordinator (the share
// it holds of every client's masking key, its own included, in round order
// as Init's per-holder bundle lists them). Per the spec, any share that fails verification
// against its stored commitment rejects the whole submission rather than
// silently dropping the bad share.
//
// weights is added directly into the running masked sum: the caller is
// expected to have already combined weights with this client's own mask via
// DeriveMask before calling Submit, matching the spec's "derive mask, add to
// weights" ordering.
func (r *Round) SubmitMaskedUpdate(id ClientID, weights []float64, shares []Share, commitments map[ClientID][]Commitment) error {
	if r.state != SharesDistributed && r.state != UpdatesReceived {
		return herrors.New(herrors.RoundBusy, "secureagg: round is not accepting updates in its current state")
	}
	cs, ok := r.clients[id]
	if !ok {
		return herrors.New(herrors.InvalidParameters, "secureagg: unknown client id")
	}
	if cs.submitted {
		return herrors.New(herrors.RoundBusy, "secureagg: client has already submitted this round")
	}

	if err := r.verifyReturnedShares(id, shares, commitments); err != nil {
		return err
	}

	if r.maskedSum == nil {
		r.maskedSum = append([]float64(nil), weights...)
	} else {
		if len(weights) != len(r.maskedSum) {
			return herrors.New(herrors.InvalidParameters, "secureagg: weight vector length mismatch across clients")
		}
		for i, w := range weights {
			r.maskedSum[i] += w
		}
	}

	cs.reconstructShares = append(cs.reconstructShares, shares...)
	cs.submitted = true
	r.commitments[id] = commitments[id]

	r.state = UpdatesReceived
	return nil
}

// verifyReturnedShares checks each share holder id is handing back against
// the commitment its owner advertised for id's position. shares is ordered
// by owner to match r.order (as Init's sharesByHolder builds it), not by
// each share's own X: X is fixed per holder across every owner's
// polynomial, so it cannot itself identify which owner a share belongs to.
func (r *Round) verifyReturnedShares(id ClientID, shares []Share, commitments map[ClientID][]Commitment) error {
	for ownerID := range commitments {
		if _, ok := r.clients[ownerID]; !ok {
			return herrors.New(herrors.InvalidParameters, "secureagg: commitments reference an unknown client")
		}
	}
	holderIdx := r.indexOf(id)
	if holderIdx < 0 {
		return herrors.New(herrors.InvalidParameters, "secureagg: unknown client id")
	}
	if len(shares) != len(r.order) {
		return herrors.New(herrors.InvalidParameters, "secureagg: expected one returned share per client in the round")
	}
	for i, sh := range shares {
		ownerID := r.order[i]
		wantList, ok := commitments[ownerID]
		if !ok || holderIdx >= len(wantList) {
			return herrors.New(herrors.InvalidParameters, "secureagg: missing commitment for returned share")
		}
		if err := VerifyShare(sh, wantList[holderIdx]); err != nil {
			return err
		}
	}
	return nil
}

// ReconstructMasks recovers the masking key of every client in dropped by
// Lagrange-interpolating the reconstruction shares submitted for it by the
// survivors, requiring at least the round's threshold number of shares per
// dropped client.
func (r *Round) ReconstructMasks(survivors, dropped []ClientID) (map[ClientID]*uint256.Int, error) {
	if r.state != UpdatesReceived {
		return nil, herrors.New(herrors.RoundBusy, "secureagg: round must have received updates before reconstruction")
	}
	if len(survivors) < r.threshold {
		return nil, herrors.New(herrors.InsufficientShares, "secureagg: fewer surviving clients than the reconstruction threshold")
	}
	r.state = Reconstructing

	r.survivors = make(map[ClientID]bool, len(survivors))
	for _, id := range survivors {
		r.survivors[id] = true
	}
	r.dropped = make(map[ClientID]bool, len(dropped))
	for _, id := range dropped {
		r.dropped[id] = true
	}

	recovered := make(map[ClientID]*uint256.Int, len(dropped))
	for _, droppedID := range dropped {
		droppedIdx := r.indexOf(droppedID)
		if droppedIdx < 0 {
			return nil, herrors.New(herrors.InvalidParameters, "secureagg: dropped client is not part of this round")
		}

		// survivor.reconstructShares is ordered by owner to match r.order
		// (see verifyReturnedShares), so droppedIdx indexes straight into
		// it rather than needing to match on the share's own X.
		var gathered []Share
		for _, survivorID := range survivors {
			survivor, ok := r.clients[survivorID]
			if !ok || droppedIdx >= len(survivor.reconstructShares) {
				continue
			}
			gathered = append(gathered, survivor.reconstructShares[droppedIdx])
		}
		if len(gathered) < r.threshold {
			return nil, herrors.New(herrors.InsufficientShares, "secureagg: not enough returned shares to reconstruct a dropped client's key")
		}

		key, err := reconstruct(gathered, r.threshold)
		if err != nil {
			return nil, err
		}
		recovered[droppedID] = key
	}
	return recovered, nil
}

// indexOf returns id's position in the round's fixed client ordering, or -1
// if id is not part of the round.
func (r *Round) indexOf(id ClientID) int {
	for i, c := range r.order {
		if c == id {
			return i
		}
	}
	return -1
}

// UnmaskAggregation subtracts the re-derived masks of every dropped client
// from the running masked sum, leaving the plaintext aggregate of the
// surviving clients' weight updates. layerIndex and length must match the
// values used when the dropped clients' own masks were derived.
func (r *Round) UnmaskAggregation(reconstructedKeys map[ClientID]*uint256.Int, layerIndex, length int) ([]float64, error) {
	if r.state != Reconstructing {
		return nil, herrors.New(herrors.RoundBusy, "secureagg: round must be in Reconstructing to unmask")
	}
	if r.maskedSum == nil || len(r.maskedSum) != length {
		return nil, herrors.New(herrors.InvalidParameters, "secureagg: masked sum length does not match requested layer length")
	}

	result := append([]float64(nil), r.maskedSum...)
	for id, key := range reconstructedKeys {
		cs, ok := r.clients[id]
		if !ok {
			return nil, herrors.New(herrors.InvalidParameters, "secureagg: reconstructed key references an unknown client")
		}
		keyBytes := key.Bytes32()
		mask, err := DeriveMask(keyBytes[:], cs.nonce, layerIndex, length)
		if err != nil {
			return nil, err
		}
		for i, m := range mask {
			result[i] -= m
		}
	}

	r.state = Finalized
	return result, nil
}
