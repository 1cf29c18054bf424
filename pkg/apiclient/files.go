package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/arpitWebvedant/E-signature-sub001/pkg/domain"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/steps"
)

// GetDocument fetches a document with its recipients and sign data.
// folderID and token are optional; token authorizes recipient-link
// access without a session.
func (c *Client) GetDocument(ctx context.Context, documentID, userID, folderID, token string) (*GetDocumentResult, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, errors.New("documentId is required")
	}
	v := url.Values{}
	v.Set("documentId", documentID)
	if userID != "" {
		v.Set("userId", userID)
	}
	if folderID != "" {
		v.Set("folderId", folderID)
	}
	if token != "" {
		v.Set("token", token)
	}
	body, err := c.do(ctx, http.MethodGet, "/files/get-document?"+v.Encode(), nil, true)
	if err != nil {
		return nil, err
	}
	return decode[GetDocumentResult](body)
}

// UploadPDF streams a file as multipart form data and returns the id
// the backend assigned to the stored blob.
func (c *Client) UploadPDF(ctx context.Context, filename string, r io.Reader) (string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	respBody, err := c.doRaw(ctx, http.MethodPost, "/files/upload-pdf", buf.Bytes(), mw.FormDataContentType(), false)
	if err != nil {
		return "", err
	}
	out, err := decode[struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}](respBody)
	if err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", errors.New("upload response missing file id")
	}
	return out.Data.ID, nil
}

// CreateDocument registers a new document from an uploaded file.
func (c *Client) CreateDocument(ctx context.Context, p DocumentPayload) (*domain.Document, error) {
	body, err := c.do(ctx, http.MethodPost, "/files/create-document", p, false)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// SaveDocument pushes the current preparation state. This is the
// autosave behind every step-store mutation, so it carries the whole
// step collection rather than a diff.
func (c *Client) SaveDocument(ctx context.Context, p DocumentPayload) (*domain.Document, error) {
	body, err := c.do(ctx, http.MethodPut, "/files/create-document", p, false)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// FinalizeDocument marks preparation complete.
func (c *Client) FinalizeDocument(ctx context.Context, p DocumentPayload) (*domain.Document, error) {
	body, err := c.do(ctx, http.MethodPut, "/files/create-document?isComplete=true", p, false)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// StepSaver adapts SaveDocument to the step store's SaveFunc.
func (c *Client) StepSaver() steps.SaveFunc {
	return func(ctx context.Context, p steps.SavePayload) error {
		_, err := c.SaveDocument(ctx, DocumentPayload{
			DocumentID: p.DocID,
			UserID:     p.UserID,
			Steps:      p.Steps,
		})
		return err
	}
}

// SendDocument routes a prepared document to its recipients.
func (c *Client) SendDocument(ctx context.Context, documentID, userID string) (*domain.Document, error) {
	body, err := c.do(ctx, http.MethodPut, "/files/send-document", map[string]string{
		"documentId": documentID,
		"userId":     userID,
	}, false)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// SignDocument submits one recipient's completed fields.
func (c *Client) SignDocument(ctx context.Context, req SignRequest) (*domain.Document, error) {
	body, err := c.do(ctx, http.MethodPost, "/files/sign-document", req, false)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// RejectDocument records a recipient's rejection with its category and
// reason.
func (c *Client) RejectDocument(ctx context.Context, req RejectRequest) (*domain.Document, error) {
	body, err := c.do(ctx, http.MethodPost, "/files/reject-document", req, false)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// SigningLinks returns the per-recipient links issued when the
// document was sent.
func (c *Client) SigningLinks(ctx context.Context, documentID string) ([]RecipientLink, error) {
	v := url.Values{}
	v.Set("documentId", documentID)
	body, err := c.do(ctx, http.MethodGet, "/files/get-signing-links?"+v.Encode(), nil, true)
	if err != nil {
		return nil, err
	}
	out, err := decode[struct {
		Links []RecipientLink `json:"links"`
	}](body)
	if err != nil {
		return nil, err
	}
	return out.Links, nil
}

// RecentActivity returns the activity feed for a user's dashboard.
func (c *Client) RecentActivity(ctx context.Context, userID string) ([]ActivityItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("userId is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/files/get-recent-activity/"+url.PathEscape(userID), nil, true)
	if err != nil {
		return nil, err
	}
	out, err := decode[struct {
		Activity []ActivityItem `json:"activity"`
	}](body)
	if err != nil {
		return nil, err
	}
	return out.Activity, nil
}

// ListDocuments returns the dashboard page for one status bucket.
func (c *Client) ListDocuments(ctx context.Context, userID string, status domain.DocumentStatus, page, limit int) ([]domain.Document, StatusCounts, error) {
	v := url.Values{}
	v.Set("userId", userID)
	if status != "" {
		v.Set("status", string(status))
	}
	if page > 0 {
		v.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		v.Set("limit", fmt.Sprint(limit))
	}
	body, err := c.do(ctx, http.MethodGet, "/files/list-documents?"+v.Encode(), nil, true)
	if err != nil {
		return nil, nil, err
	}
	out, err := decode[struct {
		Documents []domain.Document `json:"documents"`
		Counts    StatusCounts      `json:"counts"`
	}](body)
	if err != nil {
		return nil, nil, err
	}
	return out.Documents, out.Counts, nil
}

func decodeDocument(body []byte) (*domain.Document, error) {
	out, err := decode[struct {
		Document *domain.Document `json:"document"`
	}](body)
	if err != nil {
		return nil, err
	}
	if out.Document == nil {
		return nil, errors.New("response missing document")
	}
	return out.Document, nil
}
