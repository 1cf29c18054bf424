package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arpitWebvedant/E-signature-sub001/internal/localstate"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/domain"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/pdfcheck"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/steps"
)

// repeatStringFlag collects a repeatable --field flag.
type repeatStringFlag []string

func (r *repeatStringFlag) String() string { return strings.Join(*r, ",") }
func (r *repeatStringFlag) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*r = append(*r, v)
	}
	return nil
}

func matchString(want string) func(raw json.RawMessage) bool {
	return func(raw json.RawMessage) bool {
		var s string
		return json.Unmarshal(raw, &s) == nil && s == want
	}
}

func (a *app) runUpload(args []string) {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := fs.String("file", "", "path to the pdf to upload")
	title := fs.String("title", "", "document title (defaults to the file name)")
	folder := fs.String("folder", "", "destination folder id")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	if strings.TrimSpace(*file) == "" {
		usageErr("--file is required")
	}
	client, sess, err := a.client()
	if err != nil {
		fail(err.Error())
	}
	ctx := context.Background()

	info, err := pdfcheck.Inspect(ctx, *file)
	if err != nil {
		fail("pdf check: " + err.Error())
	}
	f, err := os.Open(*file)
	if err != nil {
		fail("open: " + err.Error())
	}
	defer f.Close()

	name := filepath.Base(*file)
	fileID, err := client.UploadPDF(ctx, name, f)
	if err != nil {
		fail("upload: " + err.Error())
	}

	docTitle := strings.TrimSpace(*title)
	if docTitle == "" {
		docTitle = name
	}
	st := steps.NewStore(client.StepSaver())
	st.UpdateStepData(1, map[string]any{
		"title":     docTitle,
		"fileId":    fileID,
		"pageCount": info.PageCount,
	}, steps.SkipRemoteSave())

	doc, err := client.CreateDocument(ctx, apiclient.DocumentPayload{
		FileID:   fileID,
		UserID:   sess.User.ID,
		FolderID: strings.TrimSpace(*folder),
		Title:    docTitle,
		Steps:    st.Snapshot(),
	})
	if err != nil {
		fail("create document: " + err.Error())
	}
	st.SetDocument(doc.ID, sess.User.ID)

	// The draft survives the process so `steps show` and a later
	// `docs send` can pick it up.
	if err := a.state.Put(localstate.KeySelectedData+":"+doc.ID, st.Snapshot()); err != nil {
		fail("persist draft: " + err.Error())
	}
	if err := a.state.AppendToList(localstate.KeyPendingDocuments, doc.ID); err != nil {
		fail("track upload: " + err.Error())
	}
	emit(map[string]any{"document": doc, "fileId": fileID, "pageCount": info.PageCount})
}

func (a *app) runDocs(args []string) {
	if len(args) < 1 {
		usageErr("usage: esignctl docs get|send|sign|reject|links|list [flags]")
	}
	switch args[0] {
	case "get":
		a.runDocsGet(args[1:])
	case "send":
		a.runDocsSend(args[1:])
	case "sign":
		a.runDocsSign(args[1:])
	case "reject":
		a.runDocsReject(args[1:])
	case "links":
		a.runDocsLinks(args[1:])
	case "list":
		a.runDocsList(args[1:])
	default:
		usageErr("unknown docs subcommand " + args[0])
	}
}

func (a *app) runDocsGet(args []string) {
	fs := flag.NewFlagSet("docs get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "document id")
	folder := fs.String("folder", "", "folder id")
	token := fs.String("token", "", "recipient link token")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	if *id == "" {
		usageErr("--id is required")
	}
	ctx := context.Background()

	// A link token authorizes the fetch on its own, no session needed.
	if *token != "" {
		anon := apiclient.New(a.cfg.Backend.BaseURL, nil)
		res, err := anon.GetDocument(ctx, *id, "", *folder, *token)
		if err != nil {
			fail("get: " + err.Error())
		}
		emit(map[string]any{"accessStatus": res.Status, "document": res.Document, "signData": res.SignData})
		return
	}
	client, sess, err := a.client()
	if err != nil {
		fail(err.Error())
	}
	res, err := client.GetDocument(ctx, *id, sess.User.ID, *folder, "")
	if err != nil {
		fail("get: " + err.Error())
	}
	emit(map[string]any{"accessStatus": res.Status, "document": res.Document, "signData": res.SignData})
}

func (a *app) runDocsSend(args []string) {
	fs := flag.NewFlagSet("docs send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "document id")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	if *id == "" {
		usageErr("--id is required")
	}
	client, sess, err := a.client()
	if err != nil {
		fail(err.Error())
	}
	ctx := context.Background()
	doc, err := client.SendDocument(ctx, *id, sess.User.ID)
	if err != nil {
		fail("send: " + err.Error())
	}
	links, err := client.SigningLinks(ctx, *id)
	if err != nil {
		fail("links: " + err.Error())
	}
	// Sent documents move off the pending list.
	_ = a.state.RemoveFromList(localstate.KeyPendingDocuments, matchString(*id))
	emit(map[string]any{"document": doc, "links": links})
}

func (a *app) runDocsSign(args []string) {
	fs := flag.NewFlagSet("docs sign", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "document id")
	token := fs.String("token", "", "recipient link token")
	email := fs.String("email", "", "recipient email (when no token)")
	var fields repeatStringFlag
	fs.Var(&fields, "field", "fieldId=value to insert (repeatable)")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	if *id == "" {
		usageErr("--id is required")
	}
	if *token == "" && *email == "" {
		usageErr("either --token or --email is required")
	}
	req := apiclient.SignRequest{DocumentID: *id, RecipientEmail: *email, Token: *token}
	for _, kv := range fields {
		fieldID, val, ok := strings.Cut(kv, "=")
		if !ok {
			usageErr("--field wants fieldId=value, got " + kv)
		}
		req.Fields = append(req.Fields, domain.Field{ID: fieldID, Signature: val, Inserted: true})
	}
	anon := apiclient.New(a.cfg.Backend.BaseURL, nil)
	doc, err := anon.SignDocument(context.Background(), req)
	if err != nil {
		fail("sign: " + err.Error())
	}
	emit(map[string]any{"document": doc})
}

func (a *app) runDocsReject(args []string) {
	fs := flag.NewFlagSet("docs reject", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "document id")
	token := fs.String("token", "", "recipient link token")
	email := fs.String("email", "", "recipient email (when no token)")
	category := fs.String("category", "", "rejection category")
	reason := fs.String("reason", "", "rejection reason")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	if *id == "" {
		usageErr("--id is required")
	}
	if *token == "" && *email == "" {
		usageErr("either --token or --email is required")
	}
	anon := apiclient.New(a.cfg.Backend.BaseURL, nil)
	doc, err := anon.RejectDocument(context.Background(), apiclient.RejectRequest{
		DocumentID:     *id,
		RecipientEmail: *email,
		Token:          *token,
		Category:       *category,
		Reason:         *reason,
	})
	if err != nil {
		fail("reject: " + err.Error())
	}
	emit(map[string]any{"document": doc})
}

func (a *app) runDocsLinks(args []string) {
	fs := flag.NewFlagSet("docs links", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "document id")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	if *id == "" {
		usageErr("--id is required")
	}
	client, _, err := a.client()
	if err != nil {
		fail(err.Error())
	}
	links, err := client.SigningLinks(context.Background(), *id)
	if err != nil {
		fail("links: " + err.Error())
	}
	emit(map[string]any{"links": links})
}

func (a *app) runDocsList(args []string) {
	fs := flag.NewFlagSet("docs list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	status := fs.String("status", "", "status bucket (DRAFT, IN_PROGRESS, COMPLETED, REJECTED, EXPIRED)")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	client, sess, err := a.client()
	if err != nil {
		fail(err.Error())
	}
	docs, counts, err := client.ListDocuments(context.Background(), sess.User.ID, domain.DocumentStatus(*status), *page, *limit)
	if err != nil {
		fail("list: " + err.Error())
	}
	emit(map[string]any{"documents": docs, "counts": counts})
}

func (a *app) runSteps(args []string) {
	if len(args) < 1 || args[0] != "show" {
		usageErr("usage: esignctl steps show --id <documentId>")
	}
	fs := flag.NewFlagSet("steps show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "document id")
	if err := fs.Parse(args[1:]); err != nil {
		usageErr(err.Error())
	}
	if *id == "" {
		usageErr("--id is required")
	}
	var snap steps.Steps
	ok, err := a.state.Get(localstate.KeySelectedData+":"+*id, &snap)
	if err != nil {
		fail("read state: " + err.Error())
	}
	if !ok {
		fail(fmt.Sprintf("no local draft for %s", *id))
	}
	emit(map[string]any{"documentId": *id, "steps": snap})
}
