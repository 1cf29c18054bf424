package apiclient

import (
	"time"

	"github.com/arpitWebvedant/E-signature-sub001/pkg/domain"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/steps"
)

// User is the backend's profile record for an authenticated account.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
}

// Session pairs a user profile with the bearer token that authorizes
// subsequent calls.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	ParentID  string    `json:"parentId,omitempty"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type ActivityItem struct {
	DocumentID string    `json:"documentId"`
	Title      string    `json:"title"`
	Action     string    `json:"action"`
	ActorEmail string    `json:"actorEmail,omitempty"`
	At         time.Time `json:"at"`
}

type APIKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	// Key is only populated in the create response; the backend stores
	// a hash.
	Key string `json:"key,omitempty"`
}

// GetDocumentResult is the full view+sign payload for one document.
type GetDocumentResult struct {
	Document *domain.Document `json:"document"`
	SignData []domain.Field   `json:"signData,omitempty"`
	Status   string           `json:"status,omitempty"`
}

// DocumentPayload is what create/save/finalize calls carry: the
// document being prepared plus the whole accumulated step collection.
type DocumentPayload struct {
	DocumentID  string             `json:"documentId,omitempty"`
	FileID      string             `json:"fileId,omitempty"`
	UserID      string             `json:"userId"`
	FolderID    string             `json:"folderId,omitempty"`
	Title       string             `json:"title,omitempty"`
	SigningMode domain.SigningMode `json:"signingMode,omitempty"`
	Recipients  []domain.Recipient `json:"recipients,omitempty"`
	Fields      []domain.Field     `json:"fields,omitempty"`
	Steps       steps.Steps        `json:"steps,omitempty"`
}

// RecipientLink is one recipient's invitation to a sent document.
type RecipientLink struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

type SignRequest struct {
	DocumentID     string         `json:"documentId"`
	RecipientEmail string         `json:"recipientEmail"`
	Token          string         `json:"token,omitempty"`
	Fields         []domain.Field `json:"fields"`
}

type RejectRequest struct {
	DocumentID     string `json:"documentId"`
	RecipientEmail string `json:"recipientEmail"`
	Token          string `json:"token,omitempty"`
	Category       string `json:"category,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// StatusCounts backs the dashboard's per-status tallies.
type StatusCounts map[string]int
