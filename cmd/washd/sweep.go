package main

import (
	"context"
	"log"
	"time"

	"github.com/schemawash/schemawash/util"
	"github.com/schemawash/schemawash/wash"

	"github.com/gorhill/cronexpr"
)

// Sweeps washes the configured input directory on the given crontab
// schedule, blocking until the context is done.
//
// With a progress store configured, each sweep only picks up files
// that arrived since the last one.
func (s *Service) Sweeps(ctx context.Context, cronLine string) error {
	expr, err := cronexpr.Parse(cronLine)
	if err != nil {
		return err
	}

	for {
		next := expr.Next(time.Now())
		util.Logf("washd next sweep at %s", next.UTC().Format(time.RFC3339))

		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}

		summary, err := wash.Wash(ctx, s.spec, s.washOpts)
		if err != nil {
			// The directory might reappear before the next
			// sweep, so keep going.
			log.Printf("washd sweep error: %v", err)
			continue
		}
		util.Logf("washd sweep: %d files, %d records written, %d errors",
			summary.Files, summary.Written, len(summary.Errors))
	}
}
