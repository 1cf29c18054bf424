package pdfcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestInspect_RejectsNonPDFExtension(t *testing.T) {
	p := filepath.Join(t.TempDir(), "doc.docx")
	if err := os.WriteFile(p, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Inspect(context.Background(), p); err == nil {
		t.Fatal("expected extension rejection")
	}
}

func TestInspect_RejectsMalformedPDF(t *testing.T) {
	p := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.7 garbage"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Inspect(context.Background(), p); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestInspect_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Inspect(ctx, p); err == nil {
		t.Fatal("expected context error")
	}
}
