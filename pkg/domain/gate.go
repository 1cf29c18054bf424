package domain

import "sort"

// GateResult is the derived verdict for one viewer. It is recomputed
// whenever the recipient list or viewer changes and is never persisted.
type GateResult struct {
	Active bool

	// BlockingEmail is the first prior signer (ascending order) whose
	// status is not SIGNED. Empty when the gate is inactive.
	BlockingEmail string
	BlockingName  string
}

// EvaluateSigningGate decides whether viewerEmail may interact with a
// document's fields under sequential signing order.
//
// The gate only ever applies to recipients with role SIGNER; CC,
// approver and viewer roles, and emails absent from the recipient list,
// are never gated.
func EvaluateSigningGate(mode SigningMode, recipients []Recipient, viewerEmail string) GateResult {
	if mode != ModeSequential || len(recipients) == 0 {
		return GateResult{}
	}

	ordered := make([]Recipient, len(recipients))
	copy(ordered, recipients)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SigningOrder < ordered[j].SigningOrder })

	var viewer *Recipient
	for i := range ordered {
		if ordered[i].Role == RoleSigner && SameEmail(ordered[i].Email, viewerEmail) {
			viewer = &ordered[i]
			break
		}
	}
	if viewer == nil {
		return GateResult{}
	}

	for i := range ordered {
		r := ordered[i]
		if r.SigningOrder >= viewer.SigningOrder {
			break
		}
		if r.Role != RoleSigner {
			continue
		}
		if r.SigningStatus != StatusSigned {
			return GateResult{Active: true, BlockingEmail: r.Email, BlockingName: r.Name}
		}
	}
	return GateResult{}
}
