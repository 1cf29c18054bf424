package main

import (
	"context"
	"flag"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/domain"
)

// runActivity renders the dashboard view: document buckets, the
// activity feed and folders, fetched concurrently.
func (a *app) runActivity(args []string) {
	fs := flag.NewFlagSet("activity", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	client, sess, err := a.client()
	if err != nil {
		fail(err.Error())
	}

	var (
		docs    []domain.Document
		counts  apiclient.StatusCounts
		feed    []apiclient.ActivityItem
		folders []apiclient.Folder
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		docs, counts, err = client.ListDocuments(ctx, sess.User.ID, "", *page, *limit)
		return err
	})
	g.Go(func() error {
		var err error
		feed, err = client.RecentActivity(ctx, sess.User.ID)
		return err
	})
	g.Go(func() error {
		var err error
		folders, err = client.ListFolders(ctx, sess.User.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		fail("dashboard: " + err.Error())
	}
	emit(map[string]any{
		"documents": docs,
		"counts":    counts,
		"activity":  feed,
		"folders":   folders,
	})
}
