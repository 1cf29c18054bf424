package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) ListFolders(ctx context.Context, userID string) ([]Folder, error) {
	v := url.Values{}
	v.Set("userId", userID)
	body, err := c.do(ctx, http.MethodGet, "/folders?"+v.Encode(), nil, true)
	if err != nil {
		return nil, err
	}
	out, err := decode[struct {
		Folders []Folder `json:"folders"`
	}](body)
	if err != nil {
		return nil, err
	}
	return out.Folders, nil
}

func (c *Client) CreateFolder(ctx context.Context, userID, name, parentID string) (*Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("folder name is required")
	}
	body, err := c.do(ctx, http.MethodPost, "/folders", map[string]string{
		"userId":   userID,
		"name":     name,
		"parentId": parentID,
	}, false)
	if err != nil {
		return nil, err
	}
	return decodeFolder(body)
}

func (c *Client) RenameFolder(ctx context.Context, folderID, name string) (*Folder, error) {
	body, err := c.do(ctx, http.MethodPut, "/folders/"+url.PathEscape(folderID), map[string]string{
		"name": name,
	}, false)
	if err != nil {
		return nil, err
	}
	return decodeFolder(body)
}

func (c *Client) DeleteFolder(ctx context.Context, folderID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/folders/"+url.PathEscape(folderID), nil, false)
	return err
}

// PinFolder pins or unpins a folder on the dashboard.
func (c *Client) PinFolder(ctx context.Context, folderID string, pinned bool) (*Folder, error) {
	body, err := c.do(ctx, http.MethodPut, "/folders/"+url.PathEscape(folderID)+"/pin", map[string]bool{
		"pinned": pinned,
	}, false)
	if err != nil {
		return nil, err
	}
	return decodeFolder(body)
}

// MoveDocument relocates a document into a folder; an empty folderID
// moves it back to the root.
func (c *Client) MoveDocument(ctx context.Context, documentID, folderID string) error {
	_, err := c.do(ctx, http.MethodPut, "/folders/move", map[string]string{
		"documentId": documentID,
		"folderId":   folderID,
	}, false)
	return err
}

func decodeFolder(body []byte) (*Folder, error) {
	out, err := decode[struct {
		Folder *Folder `json:"folder"`
	}](body)
	if err != nil {
		return nil, err
	}
	if out.Folder == nil {
		return nil, errors.New("response missing folder")
	}
	return out.Folder, nil
}
