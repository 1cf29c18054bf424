package domain

import (
	"strings"
	"time"
)

type RecipientRole string

const (
	RoleSigner    RecipientRole = "SIGNER"
	RoleCC        RecipientRole = "CC"
	RoleApprover  RecipientRole = "APPROVER"
	RoleViewer    RecipientRole = "VIEWER"
	RoleAssistant RecipientRole = "ASSISTANT"
)

type SigningStatus string

const (
	StatusNotSigned SigningStatus = "NOT_SIGNED"
	StatusSigned    SigningStatus = "SIGNED"
	StatusRejected  SigningStatus = "REJECTED"
	StatusViewed    SigningStatus = "VIEWED"
)

type SigningMode string

const (
	ModeSequential SigningMode = "SEQUENTIAL"
	ModeParallel   SigningMode = "PARALLEL"
)

type DocumentStatus string

const (
	DocDraft     DocumentStatus = "DRAFT"
	DocInbox     DocumentStatus = "IN_PROGRESS"
	DocCompleted DocumentStatus = "COMPLETED"
	DocRejected  DocumentStatus = "REJECTED"
	DocExpired   DocumentStatus = "EXPIRED"
)

// Recipient is one party on a document. SigningOrder only matters when
// the document's mode is SEQUENTIAL.
type Recipient struct {
	Email          string        `json:"email"`
	Name           string        `json:"name,omitempty"`
	Role           RecipientRole `json:"role"`
	SigningOrder   int           `json:"signingOrder"`
	SigningStatus  SigningStatus `json:"signingStatus"`
	RejectCategory string        `json:"rejectCategory,omitempty"`
	RejectReason   string        `json:"rejectReason,omitempty"`
	SignedAt       *time.Time    `json:"signedAt,omitempty"`
}

// Field is a positioned, typed overlay element on a document page. It
// belongs to exactly one signer, matched by email.
type Field struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type"`
	Page        int            `json:"page"`
	PositionX   float64        `json:"positionX"`
	PositionY   float64        `json:"positionY"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	SignerEmail string         `json:"signerEmail"`
	FieldMeta   map[string]any `json:"fieldMeta,omitempty"`
	Inserted    bool           `json:"inserted"`
	Signature   string         `json:"signature,omitempty"`
}

type Document struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId,omitempty"`
	FolderID    string         `json:"folderId,omitempty"`
	Title       string         `json:"title"`
	Status      DocumentStatus `json:"status"`
	SigningMode SigningMode    `json:"signingMode,omitempty"`
	Recipients  []Recipient    `json:"recipients"`
	Fields      []Field        `json:"fields,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt,omitempty"`
}

// NormalizeEmail is the comparison form used everywhere a recipient is
// matched against a viewer: trimmed and case-insensitive.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameEmail reports whether two addresses identify the same recipient.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b) && NormalizeEmail(a) != ""
}

// RecipientByEmail returns the document recipient matching email, or nil.
func (d *Document) RecipientByEmail(email string) *Recipient {
	for i := range d.Recipients {
		if SameEmail(d.Recipients[i].Email, email) {
			return &d.Recipients[i]
		}
	}
	return nil
}
