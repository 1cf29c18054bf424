package main

import (
	"context"
	"flag"
	"os"
	"strings"
)

func (a *app) runFolders(args []string) {
	if len(args) < 1 {
		usageErr("usage: esignctl folders create|move|delete|pin [flags]")
	}
	client, sess, err := a.client()
	if err != nil {
		fail(err.Error())
	}
	ctx := context.Background()

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("folders create", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		name := fs.String("name", "", "folder name")
		parent := fs.String("parent", "", "parent folder id")
		if err := fs.Parse(args[1:]); err != nil {
			usageErr(err.Error())
		}
		if strings.TrimSpace(*name) == "" {
			usageErr("--name is required")
		}
		f, err := client.CreateFolder(ctx, sess.User.ID, *name, *parent)
		if err != nil {
			fail("create folder: " + err.Error())
		}
		emit(map[string]any{"folder": f})

	case "move":
		fs := flag.NewFlagSet("folders move", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		doc := fs.String("doc", "", "document id")
		folder := fs.String("folder", "", "destination folder id (empty moves to root)")
		if err := fs.Parse(args[1:]); err != nil {
			usageErr(err.Error())
		}
		if *doc == "" {
			usageErr("--doc is required")
		}
		if err := client.MoveDocument(ctx, *doc, *folder); err != nil {
			fail("move: " + err.Error())
		}
		emit(map[string]any{"moved": true, "documentId": *doc, "folderId": *folder})

	case "delete":
		fs := flag.NewFlagSet("folders delete", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		id := fs.String("id", "", "folder id")
		if err := fs.Parse(args[1:]); err != nil {
			usageErr(err.Error())
		}
		if *id == "" {
			usageErr("--id is required")
		}
		if err := client.DeleteFolder(ctx, *id); err != nil {
			fail("delete folder: " + err.Error())
		}
		emit(map[string]any{"deleted": true, "folderId": *id})

	case "pin":
		fs := flag.NewFlagSet("folders pin", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		id := fs.String("id", "", "folder id")
		pinned := fs.Bool("pinned", true, "pin or unpin")
		if err := fs.Parse(args[1:]); err != nil {
			usageErr(err.Error())
		}
		if *id == "" {
			usageErr("--id is required")
		}
		f, err := client.PinFolder(ctx, *id, *pinned)
		if err != nil {
			fail("pin: " + err.Error())
		}
		emit(map[string]any{"folder": f})

	default:
		usageErr("unknown folders subcommand " + args[0])
	}
}
