package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/arpitWebvedant/E-signature-sub001/internal/stubserver"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/logger"
)

// runDevServer hosts the in-memory backend locally so the rest of the
// CLI can run without a deployed environment.
func (a *app) runDevServer(args []string) {
	fs := flag.NewFlagSet("dev-server", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addr := fs.String("addr", ":8090", "listen address")
	publicURL := fs.String("public-url", "http://localhost:3000", "base url embedded in signing links")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	secret := strings.TrimSpace(a.cfg.Auth.LinkSecret)
	if secret == "" {
		secret = "dev-only-link-secret"
	}
	srv := stubserver.New([]byte(secret), *publicURL)
	logger.Info(context.Background(), "dev server listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		fail("dev server: " + err.Error())
	}
}
