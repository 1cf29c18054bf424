package stubserver

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/domain"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/steps"
)

// store is the dev backend's in-memory state. Everything is guarded by
// one mutex; this process only ever serves local smoke traffic.
type store struct {
	mu sync.Mutex

	users     map[string]apiclient.User // by user id
	sessions  map[string]string         // token hash -> user id
	apiKeys   map[string]apiKeyRecord   // key hash -> record
	files     map[string]fileRecord     // file id -> record
	documents map[string]*docRecord     // document id -> record
	folders   map[string]apiclient.Folder
	activity  []apiclient.ActivityItem
}

type apiKeyRecord struct {
	Meta   apiclient.APIKey
	UserID string
}

type fileRecord struct {
	Name     string
	Size     int64
	Uploaded time.Time
}

type docRecord struct {
	Doc   domain.Document
	Steps steps.Steps
	Links []apiclient.RecipientLink
}

func newStore() *store {
	return &store{
		users:     map[string]apiclient.User{},
		sessions:  map[string]string{},
		apiKeys:   map[string]apiKeyRecord{},
		files:     map[string]fileRecord{},
		documents: map[string]*docRecord{},
		folders:   map[string]apiclient.Folder{},
	}
}

func (s *store) upsertUserByEmail(email, name, externalID string) apiclient.User {
	for id, u := range s.users {
		if domain.SameEmail(u.Email, email) {
			if name != "" {
				u.Name = name
			}
			if externalID != "" {
				u.ExternalID = externalID
			}
			s.users[id] = u
			return u
		}
	}
	u := apiclient.User{
		ID:         "usr_" + uuid.NewString(),
		Email:      domain.NormalizeEmail(email),
		Name:       name,
		ExternalID: externalID,
	}
	s.users[u.ID] = u
	return u
}

func (s *store) recordActivity(docID, title, action, actorEmail string) {
	s.activity = append(s.activity, apiclient.ActivityItem{
		DocumentID: docID,
		Title:      title,
		Action:     action,
		ActorEmail: actorEmail,
		At:         time.Now().UTC(),
	})
}

func (s *store) recentActivity(userID string, limit int) []apiclient.ActivityItem {
	owned := map[string]bool{}
	for id, rec := range s.documents {
		if rec.Doc.UserID == userID {
			owned[id] = true
		}
	}
	out := []apiclient.ActivityItem{}
	for i := len(s.activity) - 1; i >= 0 && len(out) < limit; i-- {
		if owned[s.activity[i].DocumentID] {
			out = append(out, s.activity[i])
		}
	}
	return out
}

func (s *store) listDocuments(userID string, status domain.DocumentStatus, page, limit int) ([]domain.Document, apiclient.StatusCounts) {
	counts := apiclient.StatusCounts{}
	all := []domain.Document{}
	for _, rec := range s.documents {
		if rec.Doc.UserID != userID {
			continue
		}
		counts[string(rec.Doc.Status)]++
		if status == "" || rec.Doc.Status == status {
			all = append(all, rec.Doc)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []domain.Document{}, counts
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], counts
}

// applyPayload copies an incoming save onto the stored record. The
// step collection is replaced wholesale; the client always sends the
// full accumulated set.
func (rec *docRecord) applyPayload(p apiclient.DocumentPayload) {
	if p.Title != "" {
		rec.Doc.Title = p.Title
	}
	if p.FolderID != "" {
		rec.Doc.FolderID = p.FolderID
	}
	if p.SigningMode != "" {
		rec.Doc.SigningMode = p.SigningMode
	}
	if p.Recipients != nil {
		rec.Doc.Recipients = p.Recipients
	}
	if p.Fields != nil {
		rec.Doc.Fields = p.Fields
	}
	if p.Steps != nil {
		rec.Steps = p.Steps
	}
	rec.Doc.UpdatedAt = time.Now().UTC()
}

// markSigned flips one recipient and returns whether every signer has
// now signed.
func (rec *docRecord) markSigned(email string, fields []domain.Field) bool {
	now := time.Now().UTC()
	for i := range rec.Doc.Recipients {
		r := &rec.Doc.Recipients[i]
		if domain.SameEmail(r.Email, email) {
			r.SigningStatus = domain.StatusSigned
			r.SignedAt = &now
		}
	}
	for _, in := range fields {
		for i := range rec.Doc.Fields {
			f := &rec.Doc.Fields[i]
			if f.ID == in.ID && domain.SameEmail(f.SignerEmail, email) {
				f.Inserted = true
				f.Signature = in.Signature
				f.FieldMeta = in.FieldMeta
			}
		}
	}
	for _, r := range rec.Doc.Recipients {
		if r.Role == domain.RoleSigner && r.SigningStatus != domain.StatusSigned {
			return false
		}
	}
	return true
}
