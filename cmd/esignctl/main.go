// esignctl drives the e-signature workflow from the terminal: auth
// against the centralized provider, document upload and preparation,
// sending, recipient signing and rejection, folders and API keys. It
// talks to the backend's /api/v1 and keeps its session and drafts in
// a local SQLite state file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arpitWebvedant/E-signature-sub001/internal/config"
	"github.com/arpitWebvedant/E-signature-sub001/internal/localstate"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/logger"
)

const usageText = `usage: esignctl <command> [flags]

  login     --email <addr> [--name <n>] | --ticket <t> | --api-key <k>
  logout
  whoami
  upload    --file <path.pdf> [--title <t>] [--folder <id>]
  docs      get|send|sign|reject|links|list [flags]
  steps     show --id <documentId>
  folders   create|move|delete|pin [flags]
  apikeys   create|list|revoke [flags]
  activity  [--page <n>] [--limit <n>]
  dev-server [--addr :8090] [--public-url <url>]`

func main() {
	if len(os.Args) < 2 {
		usageErr("")
	}
	app, err := loadApp()
	if err != nil {
		fail(err.Error())
	}
	defer app.close()

	switch os.Args[1] {
	case "login":
		app.runLogin(os.Args[2:])
	case "logout":
		app.runLogout(os.Args[2:])
	case "whoami":
		app.runWhoami(os.Args[2:])
	case "upload":
		app.runUpload(os.Args[2:])
	case "docs":
		app.runDocs(os.Args[2:])
	case "steps":
		app.runSteps(os.Args[2:])
	case "folders":
		app.runFolders(os.Args[2:])
	case "apikeys":
		app.runAPIKeys(os.Args[2:])
	case "activity":
		app.runActivity(os.Args[2:])
	case "dev-server":
		app.runDevServer(os.Args[2:])
	default:
		usageErr("unknown command " + os.Args[1])
	}
}

type app struct {
	cfg   *config.Config
	state *localstate.Store
}

func loadApp() (*app, error) {
	cfg, err := config.Load(os.Getenv("ESIGN_CONFIG"))
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	state, err := localstate.Open(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	return &app{cfg: cfg, state: state}, nil
}

func (a *app) close() {
	if a.state != nil {
		_ = a.state.Close()
	}
}

// session returns the persisted session, if any.
func (a *app) session() (*apiclient.Session, bool) {
	var u apiclient.User
	okUser, _ := a.state.Get(localstate.KeyUser, &u)
	var token string
	okTok, _ := a.state.Get(localstate.KeySessionToken, &token)
	if !okUser || !okTok || token == "" {
		return nil, false
	}
	return &apiclient.Session{User: u, Token: token}, true
}

// client builds an authenticated API client from the stored session or
// the configured API key.
func (a *app) client() (*apiclient.Client, *apiclient.Session, error) {
	if sess, ok := a.session(); ok {
		return apiclient.New(a.cfg.Backend.BaseURL, apiclient.SessionAuth{Token: sess.Token}), sess, nil
	}
	if a.cfg.Backend.APIKey != "" {
		c := apiclient.New(a.cfg.Backend.BaseURL, apiclient.APIKeyAuth{Key: a.cfg.Backend.APIKey})
		sess, err := c.CheckAuthByAPIKey(context.Background())
		if err != nil {
			return nil, nil, fmt.Errorf("api key auth: %w", err)
		}
		return c, sess, nil
	}
	return nil, nil, fmt.Errorf("not logged in; run esignctl login")
}

func emit(fields map[string]any) {
	out := map[string]any{"status": "OK", "timestampUtc": time.Now().UTC().Format(time.RFC3339)}
	for k, v := range fields {
		out[k] = v
	}
	b, _ := json.Marshal(out)
	fmt.Println(string(b))
}

func fail(reason string) {
	b, _ := json.Marshal(map[string]any{
		"status":       "FAIL",
		"reason":       reason,
		"timestampUtc": time.Now().UTC().Format(time.RFC3339),
	})
	fmt.Println(string(b))
	os.Exit(1)
}

func usageErr(msg string) {
	if strings.TrimSpace(msg) != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	fmt.Fprintln(os.Stderr, usageText)
	os.Exit(2)
}
