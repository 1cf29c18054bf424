// Package pdfcheck normalizes a document before upload: it confirms
// the file really is a readable PDF and reports its page count, so
// field placement can bound the page index before anything reaches the
// backend.
package pdfcheck

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

type Info struct {
	Path      string
	Title     string
	PageCount int
}

// Inspect validates the PDF at path. ctx cancellation is honored
// between stages so a torn-down session stops the work early.
func Inspect(ctx context.Context, path string) (Info, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return Info{}, fmt.Errorf("unsupported file type %q: only PDF uploads are accepted", filepath.Ext(path))
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	if err := api.ValidateFile(path, nil); err != nil {
		return Info{}, fmt.Errorf("invalid pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	pages, err := api.PageCountFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("page count: %w", err)
	}
	if pages < 1 {
		return Info{}, fmt.Errorf("pdf has no pages")
	}
	return Info{
		Path:      path,
		Title:     filepath.Base(path),
		PageCount: pages,
	}, nil
}
