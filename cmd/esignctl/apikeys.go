package main

import (
	"context"
	"flag"
	"os"
	"strings"
)

func (a *app) runAPIKeys(args []string) {
	if len(args) < 1 {
		usageErr("usage: esignctl apikeys create|list|revoke [flags]")
	}
	client, _, err := a.client()
	if err != nil {
		fail(err.Error())
	}
	ctx := context.Background()

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("apikeys create", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		name := fs.String("name", "", "key name")
		if err := fs.Parse(args[1:]); err != nil {
			usageErr(err.Error())
		}
		if strings.TrimSpace(*name) == "" {
			usageErr("--name is required")
		}
		key, err := client.CreateAPIKey(ctx, *name)
		if err != nil {
			fail("create key: " + err.Error())
		}
		// The raw key is shown here and never again.
		emit(map[string]any{"apiKey": key})

	case "list":
		keys, err := client.ListAPIKeys(ctx)
		if err != nil {
			fail("list keys: " + err.Error())
		}
		emit(map[string]any{"apiKeys": keys})

	case "revoke":
		fs := flag.NewFlagSet("apikeys revoke", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		id := fs.String("id", "", "key id")
		if err := fs.Parse(args[1:]); err != nil {
			usageErr(err.Error())
		}
		if *id == "" {
			usageErr("--id is required")
		}
		if err := client.RevokeAPIKey(ctx, *id); err != nil {
			fail("revoke: " + err.Error())
		}
		emit(map[string]any{"revoked": true, "keyId": *id})

	default:
		usageErr("unknown apikeys subcommand " + args[0])
	}
}
