package domain

// AccessState classifies what a resolved viewer may do with a document.
// These are UI-facing states, not errors: each one drives a distinct
// blocking notice instead of the normal field overlay.
type AccessState string

const (
	AccessGranted         AccessState = "granted"
	AccessDenied          AccessState = "access_denied"
	AccessAlreadySigned   AccessState = "already_signed"
	AccessAlreadyRejected AccessState = "already_rejected"
	AccessTokenInvalid    AccessState = "token_invalid"
)

// AccessResult carries the state plus, for already_rejected, the stored
// rejection category and reason.
type AccessResult struct {
	State          AccessState
	Recipient      *Recipient
	RejectCategory string
	RejectReason   string
}

// ResolveAccess determines the blocking state for viewerEmail on doc.
// The access_denied check runs first; signed/rejected checks only apply
// to a recipient that is actually on the document.
func ResolveAccess(doc *Document, viewerEmail string) AccessResult {
	r := doc.RecipientByEmail(viewerEmail)
	if r == nil {
		return AccessResult{State: AccessDenied}
	}
	switch r.SigningStatus {
	case StatusRejected:
		return AccessResult{
			State:          AccessAlreadyRejected,
			Recipient:      r,
			RejectCategory: r.RejectCategory,
			RejectReason:   r.RejectReason,
		}
	case StatusSigned:
		return AccessResult{State: AccessAlreadySigned, Recipient: r}
	}
	return AccessResult{State: AccessGranted, Recipient: r}
}

// VisibleFields filters doc's positioned fields down to the set the
// current viewer should see. In sequential mode only the viewer's own
// fields render; otherwise every field is shown and read-only preview
// paths cross-filter by signed state on their own.
func VisibleFields(doc *Document, fields []Field, viewerEmail string) []Field {
	if doc.SigningMode != ModeSequential {
		return fields
	}
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if SameEmail(f.SignerEmail, viewerEmail) {
			out = append(out, f)
		}
	}
	return out
}
