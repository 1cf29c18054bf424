// Package stubserver is an in-memory rendition of the e-signature
// backend's /api/v1 surface, enough for CLI smoke runs and client
// tests without a deployed environment. It enforces the same access
// and signing-order rules the real backend does.
package stubserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/domain"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/fieldmeta"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/httpx"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/logger"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/signingtoken"
)

const linkTTL = 14 * 24 * time.Hour

type Server struct {
	st         *store
	linkSecret []byte
	publicURL  string
}

func New(linkSecret []byte, publicURL string) *Server {
	return &Server{st: newStore(), linkSecret: linkSecret, publicURL: publicURL}
}

type ctxKey int

const userIDKey ctxKey = iota

// Handler builds the chi router for the whole API surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/auth/auto-login", s.handleAutoLogin)
		api.Post("/auth/sync-user", s.handleSyncUser)
		api.Get("/files/get-document", s.handleGetDocument)
		api.Post("/files/sign-document", s.handleSignDocument)
		api.Post("/files/reject-document", s.handleRejectDocument)

		api.Group(func(priv chi.Router) {
			priv.Use(s.requireAuth)
			priv.Get("/auth/check-auth-by-api-key", s.handleCheckAuth)
			priv.Post("/auth/api-keys", s.handleCreateAPIKey)
			priv.Get("/auth/api-keys", s.handleListAPIKeys)
			priv.Delete("/auth/api-keys/{keyId}", s.handleRevokeAPIKey)

			priv.Post("/files/upload-pdf", s.handleUploadPDF)
			priv.Post("/files/create-document", s.handleCreateDocument)
			priv.Put("/files/create-document", s.handleSaveDocument)
			priv.Put("/files/send-document", s.handleSendDocument)
			priv.Get("/files/get-signing-links", s.handleSigningLinks)
			priv.Get("/files/get-recent-activity/{userId}", s.handleRecentActivity)
			priv.Get("/files/list-documents", s.handleListDocuments)

			priv.Get("/folders", s.handleListFolders)
			priv.Post("/folders", s.handleCreateFolder)
			priv.Put("/folders/move", s.handleMoveDocument)
			priv.Put("/folders/{folderId}", s.handleRenameFolder)
			priv.Delete("/folders/{folderId}", s.handleDeleteFolder)
			priv.Put("/folders/{folderId}/pin", s.handlePinFolder)
		})
	})
	return r
}

// requireAuth resolves either a session bearer token or an API key to
// a user id.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.st.mu.Lock()
		userID := ""
		if token, ok := httpx.BearerToken(r); ok {
			userID = s.st.sessions[httpx.HashToken(token)]
		}
		if userID == "" {
			if key := r.Header.Get("X-Api-Key"); key != "" {
				if rec, ok := s.st.apiKeys[httpx.HashToken(key)]; ok {
					userID = rec.UserID
				}
			}
		}
		s.st.mu.Unlock()
		if userID == "" {
			httpx.WriteError(w, 401, "UNAUTHENTICATED", "missing or unknown credentials", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func callerID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (s *Server) issueSession(u apiclient.User) apiclient.Session {
	token := "tok_" + uuid.NewString()
	s.st.sessions[httpx.HashToken(token)] = u.ID
	return apiclient.Session{User: u, Token: token}
}

func writeSession(w http.ResponseWriter, sess apiclient.Session) {
	httpx.WriteJSON(w, 200, map[string]any{
		"requestId": httpx.NewRequestID(),
		"user":      sess.User,
		"token":     sess.Token,
	})
}

func writeDocument(w http.ResponseWriter, doc domain.Document) {
	httpx.WriteJSON(w, 200, map[string]any{
		"requestId": httpx.NewRequestID(),
		"document":  doc,
	})
}

// Auto-login tickets in the stub carry the identity inline as
// "ticket:<email>:<name>". The real provider round-trips an opaque
// ticket instead.
func (s *Server) handleAutoLogin(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	var email, name string
	if n, _ := fmt.Sscanf(ticket, "ticket:%s", &email); n != 1 {
		httpx.WriteError(w, 401, "TICKET_INVALID", "unrecognized auto-login ticket", nil)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	u := s.st.upsertUserByEmail(email, name, "")
	writeSession(w, s.issueSession(u))
}

func (s *Server) handleSyncUser(w http.ResponseWriter, r *http.Request) {
	var req apiclient.User
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	if domain.NormalizeEmail(req.Email) == "" {
		httpx.WriteError(w, 400, "EMAIL_REQUIRED", "email is required", nil)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	u := s.st.upsertUserByEmail(req.Email, req.Name, req.ExternalID)
	writeSession(w, s.issueSession(u))
}

func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	u, ok := s.st.users[callerID(r)]
	if !ok {
		httpx.WriteError(w, 401, "UNAUTHENTICATED", "unknown user", nil)
		return
	}
	writeSession(w, s.issueSession(u))
}

func (s *Server) handleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil || req.Name == "" {
		httpx.WriteError(w, 400, "NAME_REQUIRED", "key name is required", nil)
		return
	}
	raw := "esk_" + uuid.NewString()
	meta := apiclient.APIKey{ID: "key_" + uuid.NewString(), Name: req.Name, CreatedAt: time.Now().UTC()}
	s.st.mu.Lock()
	s.st.apiKeys[httpx.HashToken(raw)] = apiKeyRecord{Meta: meta, UserID: callerID(r)}
	s.st.mu.Unlock()
	// The raw key leaves the server exactly once.
	meta.Key = raw
	httpx.WriteJSON(w, 201, map[string]any{"requestId": httpx.NewRequestID(), "apiKey": meta})
}

func (s *Server) handleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	s.st.mu.Lock()
	keys := []apiclient.APIKey{}
	for _, rec := range s.st.apiKeys {
		if rec.UserID == callerID(r) {
			keys = append(keys, rec.Meta)
		}
	}
	s.st.mu.Unlock()
	httpx.WriteJSON(w, 200, map[string]any{"requestId": httpx.NewRequestID(), "apiKeys": keys})
}

func (s *Server) handleRevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "keyId")
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for hash, rec := range s.st.apiKeys {
		if rec.Meta.ID == keyID && rec.UserID == callerID(r) {
			delete(s.st.apiKeys, hash)
			httpx.WriteJSON(w, 200, map[string]any{"requestId": httpx.NewRequestID(), "revoked": true})
			return
		}
	}
	httpx.WriteError(w, 404, "NOT_FOUND", "no such api key", nil)
}

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, 400, "FILE_REQUIRED", "multipart field 'file' is required", nil)
		return
	}
	defer f.Close()
	size, err := io.Copy(io.Discard, f)
	if err != nil {
		httpx.WriteError(w, 500, "READ_FAILED", err.Error(), nil)
		return
	}
	id := "file_" + uuid.NewString()
	s.st.mu.Lock()
	s.st.files[id] = fileRecord{Name: hdr.Filename, Size: size, Uploaded: time.Now().UTC()}
	s.st.mu.Unlock()
	logger.Info(r.Context(), "stub upload stored", "fileId", id, "name", hdr.Filename, "bytes", size)
	httpx.WriteData(w, 201, map[string]any{"id": id, "name": hdr.Filename, "size": size})
}

// fieldProblems validates every placed field's kind and settings,
// keyed by field id.
func fieldProblems(fields []domain.Field) map[string]any {
	problems := map[string]any{}
	for i, f := range fields {
		key := f.ID
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		kind := fieldmeta.Kind(f.Type)
		if !fieldmeta.Known(kind) {
			problems[key] = []string{fmt.Sprintf("unknown field kind %q", f.Type)}
			continue
		}
		if len(f.FieldMeta) == 0 {
			continue
		}
		raw, _ := json.Marshal(f.FieldMeta)
		var settings fieldmeta.Settings
		if err := json.Unmarshal(raw, &settings); err != nil {
			problems[key] = []string{"unreadable field settings"}
			continue
		}
		if settings.Kind == "" {
			settings.Kind = kind
		}
		if errs := fieldmeta.Validate(settings); len(errs) > 0 {
			problems[key] = errs
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var p apiclient.DocumentPayload
	if err := httpx.ReadJSON(r, &p); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	if probs := fieldProblems(p.Fields); probs != nil {
		httpx.WriteError(w, 422, "FIELD_INVALID", "field settings failed validation", probs)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if p.FileID != "" {
		if _, ok := s.st.files[p.FileID]; !ok {
			httpx.WriteError(w, 404, "FILE_NOT_FOUND", "unknown fileId", map[string]any{"fileId": p.FileID})
			return
		}
	}
	rec := &docRecord{Doc: domain.Document{
		ID:        "doc_" + uuid.NewString(),
		UserID:    callerID(r),
		Status:    domain.DocDraft,
		CreatedAt: time.Now().UTC(),
	}}
	rec.applyPayload(p)
	s.st.documents[rec.Doc.ID] = rec
	s.st.recordActivity(rec.Doc.ID, rec.Doc.Title, "created", "")
	writeDocument(w, rec.Doc)
}

func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	var p apiclient.DocumentPayload
	if err := httpx.ReadJSON(r, &p); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	if probs := fieldProblems(p.Fields); probs != nil {
		httpx.WriteError(w, 422, "FIELD_INVALID", "field settings failed validation", probs)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	rec, ok := s.st.documents[p.DocumentID]
	if !ok || rec.Doc.UserID != callerID(r) {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such document", nil)
		return
	}
	rec.applyPayload(p)
	if r.URL.Query().Get("isComplete") == "true" {
		s.st.recordActivity(rec.Doc.ID, rec.Doc.Title, "prepared", "")
	}
	writeDocument(w, rec.Doc)
}

func (s *Server) handleSendDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"documentId"`
		UserID     string `json:"userId"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	rec, ok := s.st.documents[req.DocumentID]
	if !ok || rec.Doc.UserID != callerID(r) {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such document", nil)
		return
	}
	if len(rec.Doc.Recipients) == 0 {
		httpx.WriteError(w, 422, "NO_RECIPIENTS", "document has no recipients", nil)
		return
	}
	rec.Doc.Status = domain.DocInbox
	rec.Links = rec.Links[:0]
	for _, rcpt := range rec.Doc.Recipients {
		tok, err := signingtoken.Encode(s.linkSecret, rcpt.Email, rcpt.Name, rec.Doc.ID, linkTTL)
		if err != nil {
			httpx.WriteError(w, 500, "TOKEN_ISSUE", err.Error(), nil)
			return
		}
		rec.Links = append(rec.Links, apiclient.RecipientLink{
			Email: rcpt.Email,
			Name:  rcpt.Name,
			Token: tok,
			URL:   fmt.Sprintf("%s/sign/%s?token=%s", s.publicURL, rec.Doc.ID, tok),
		})
	}
	s.st.recordActivity(rec.Doc.ID, rec.Doc.Title, "sent", "")
	writeDocument(w, rec.Doc)
}

func (s *Server) handleSigningLinks(w http.ResponseWriter, r *http.Request) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	rec, ok := s.st.documents[r.URL.Query().Get("documentId")]
	if !ok || rec.Doc.UserID != callerID(r) {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such document", nil)
		return
	}
	httpx.WriteJSON(w, 200, map[string]any{"requestId": httpx.NewRequestID(), "links": rec.Links})
}

// resolveViewer maps the request's token or explicit email to the
// viewer identity for access checks. Token failures are reported as
// the token_invalid access state rather than an auth error.
func (s *Server) resolveViewer(token, email string) (string, domain.AccessState) {
	if token != "" {
		claims, err := signingtoken.Decode(s.linkSecret, token)
		if err != nil {
			return "", domain.AccessTokenInvalid
		}
		return claims.RecipientEmail, ""
	}
	return email, ""
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	rec, ok := s.st.documents[q.Get("documentId")]
	if !ok {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such document", nil)
		return
	}
	resp := map[string]any{"requestId": httpx.NewRequestID()}
	if token := q.Get("token"); token != "" {
		viewer, bad := s.resolveViewer(token, "")
		if bad != "" {
			resp["status"] = string(bad)
			httpx.WriteJSON(w, 200, resp)
			return
		}
		access := domain.ResolveAccess(&rec.Doc, viewer)
		resp["status"] = string(access.State)
		if access.State == domain.AccessDenied {
			httpx.WriteJSON(w, 200, resp)
			return
		}
		resp["document"] = rec.Doc
		resp["signData"] = domain.VisibleFields(&rec.Doc, rec.Doc.Fields, viewer)
		httpx.WriteJSON(w, 200, resp)
		return
	}
	// Owner path, requires a session or key.
	userID := ""
	if tok, ok := httpx.BearerToken(r); ok {
		userID = s.st.sessions[httpx.HashToken(tok)]
	}
	if userID == "" {
		if key := r.Header.Get("X-Api-Key"); key != "" {
			if kr, ok := s.st.apiKeys[httpx.HashToken(key)]; ok {
				userID = kr.UserID
			}
		}
	}
	if userID == "" || rec.Doc.UserID != userID {
		httpx.WriteError(w, 403, "ACCESS_DENIED", "document belongs to another user", nil)
		return
	}
	resp["status"] = string(domain.AccessGranted)
	resp["document"] = rec.Doc
	resp["signData"] = rec.Doc.Fields
	httpx.WriteJSON(w, 200, resp)
}

func (s *Server) handleSignDocument(w http.ResponseWriter, r *http.Request) {
	var req apiclient.SignRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	rec, ok := s.st.documents[req.DocumentID]
	if !ok {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such document", nil)
		return
	}
	viewer, bad := s.resolveViewer(req.Token, req.RecipientEmail)
	if bad != "" {
		httpx.WriteError(w, 401, "TOKEN_INVALID", "signing link token rejected", nil)
		return
	}
	access := domain.ResolveAccess(&rec.Doc, viewer)
	switch access.State {
	case domain.AccessDenied:
		httpx.WriteError(w, 403, "ACCESS_DENIED", "recipient is not on this document", nil)
		return
	case domain.AccessAlreadySigned:
		httpx.WriteError(w, 409, "ALREADY_SIGNED", "recipient already signed", nil)
		return
	case domain.AccessAlreadyRejected:
		httpx.WriteError(w, 409, "ALREADY_REJECTED", "recipient already rejected", map[string]any{
			"category": access.RejectCategory,
			"reason":   access.RejectReason,
		})
		return
	}
	if gate := domain.EvaluateSigningGate(rec.Doc.SigningMode, rec.Doc.Recipients, viewer); gate.Active {
		httpx.WriteError(w, 409, "SIGNING_ORDER", "an earlier signer has not signed yet", map[string]any{
			"blockingEmail": gate.BlockingEmail,
			"blockingName":  gate.BlockingName,
		})
		return
	}
	if rec.markSigned(viewer, req.Fields) {
		rec.Doc.Status = domain.DocCompleted
	}
	rec.Doc.UpdatedAt = time.Now().UTC()
	s.st.recordActivity(rec.Doc.ID, rec.Doc.Title, "signed", viewer)
	writeDocument(w, rec.Doc)
}

func (s *Server) handleRejectDocument(w http.ResponseWriter, r *http.Request) {
	var req apiclient.RejectRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	rec, ok := s.st.documents[req.DocumentID]
	if !ok {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such document", nil)
		return
	}
	viewer, bad := s.resolveViewer(req.Token, req.RecipientEmail)
	if bad != "" {
		httpx.WriteError(w, 401, "TOKEN_INVALID", "signing link token rejected", nil)
		return
	}
	access := domain.ResolveAccess(&rec.Doc, viewer)
	if access.State == domain.AccessDenied {
		httpx.WriteError(w, 403, "ACCESS_DENIED", "recipient is not on this document", nil)
		return
	}
	for i := range rec.Doc.Recipients {
		rcpt := &rec.Doc.Recipients[i]
		if domain.SameEmail(rcpt.Email, viewer) {
			rcpt.SigningStatus = domain.StatusRejected
			rcpt.RejectCategory = req.Category
			rcpt.RejectReason = req.Reason
		}
	}
	rec.Doc.Status = domain.DocRejected
	rec.Doc.UpdatedAt = time.Now().UTC()
	s.st.recordActivity(rec.Doc.ID, rec.Doc.Title, "rejected", viewer)
	writeDocument(w, rec.Doc)
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID != callerID(r) {
		httpx.WriteError(w, 403, "ACCESS_DENIED", "activity belongs to another user", nil)
		return
	}
	s.st.mu.Lock()
	items := s.st.recentActivity(userID, 20)
	s.st.mu.Unlock()
	httpx.WriteJSON(w, 200, map[string]any{"requestId": httpx.NewRequestID(), "activity": items})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	s.st.mu.Lock()
	docs, counts := s.st.listDocuments(callerID(r), domain.DocumentStatus(q.Get("status")), page, limit)
	s.st.mu.Unlock()
	httpx.WriteJSON(w, 200, map[string]any{
		"requestId": httpx.NewRequestID(),
		"documents": docs,
		"counts":    counts,
	})
}
