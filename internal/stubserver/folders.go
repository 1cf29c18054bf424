package stubserver

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/httpx"
)

func writeFolder(w http.ResponseWriter, status int, f apiclient.Folder) {
	httpx.WriteJSON(w, status, map[string]any{"requestId": httpx.NewRequestID(), "folder": f})
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	s.st.mu.Lock()
	out := []apiclient.Folder{}
	for _, f := range s.st.folders {
		if f.UserID == callerID(r) {
			out = append(out, f)
		}
	}
	s.st.mu.Unlock()
	// Pinned folders float to the top of the dashboard list.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].Name < out[j].Name
	})
	httpx.WriteJSON(w, 200, map[string]any{"requestId": httpx.NewRequestID(), "folders": out})
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil || req.Name == "" {
		httpx.WriteError(w, 400, "NAME_REQUIRED", "folder name is required", nil)
		return
	}
	f := apiclient.Folder{
		ID:        "fld_" + uuid.NewString(),
		Name:      req.Name,
		UserID:    callerID(r),
		ParentID:  req.ParentID,
		CreatedAt: time.Now().UTC(),
	}
	s.st.mu.Lock()
	s.st.folders[f.ID] = f
	s.st.mu.Unlock()
	writeFolder(w, 201, f)
}

func (s *Server) folderForCaller(r *http.Request) (apiclient.Folder, bool) {
	f, ok := s.st.folders[chi.URLParam(r, "folderId")]
	if !ok || f.UserID != callerID(r) {
		return apiclient.Folder{}, false
	}
	return f, true
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil || req.Name == "" {
		httpx.WriteError(w, 400, "NAME_REQUIRED", "folder name is required", nil)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	f, ok := s.folderForCaller(r)
	if !ok {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such folder", nil)
		return
	}
	f.Name = req.Name
	s.st.folders[f.ID] = f
	writeFolder(w, 200, f)
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	f, ok := s.folderForCaller(r)
	if !ok {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such folder", nil)
		return
	}
	// Documents inside a deleted folder fall back to the root.
	for _, rec := range s.st.documents {
		if rec.Doc.FolderID == f.ID {
			rec.Doc.FolderID = ""
		}
	}
	delete(s.st.folders, f.ID)
	httpx.WriteJSON(w, 200, map[string]any{"requestId": httpx.NewRequestID(), "deleted": true})
}

func (s *Server) handlePinFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	f, ok := s.folderForCaller(r)
	if !ok {
		httpx.WriteError(w, 404, "NOT_FOUND", "no such folder", nil)
		return
	}
	f.Pinned = req.Pinned
	s.st.folders[f.ID] = f
	writeFolder(w, 200, f)
}

func (s *Server) handleMoveDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"documentId"`
		FolderID   string `json:"folderId"`
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
	if req.FolderID != "" {
		f, ok := s.st.folders[req.FolderID]
		if !ok || f.UserID != callerID(r) {
			httpx.WriteError(w, 404, "NOT_FOUND", "no such folder", nil)
			return
		}
	}
	rec.Doc.FolderID = req.FolderID
	httpx.WriteJSON(w, 200, map[string]any{"requestId": httpx.NewRequestID(), "moved": true})
}
