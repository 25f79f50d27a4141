package app

import (
	"context"
	"time"

	"github.com/samvad-hq/restsource/internal/logger"
	"github.com/samvad-hq/restsource/internal/storage"
	"github.com/samvad-hq/restsource/pkg/publishers"
	"github.com/samvad-hq/restsource/pkg/restsource"
)

// journalObserver appends every exchange to the request journal.
type journalObserver struct {
	journal storage.Journal
}

func (o *journalObserver) Observe(_ context.Context, ex restsource.Exchange) error {
	entry := storage.Entry{
		Verb:       ex.Request.Verb.String(),
		Resource:   ex.Resource,
		URL:        ex.Request.URL,
		StatusCode: ex.StatusCode,
		Probe:      ex.Probe,
		ElapsedMs:  ex.Elapsed.Milliseconds(),
		At:         time.Now().UTC(),
	}
	if ex.Err != nil {
		entry.Error = ex.Err.Error()
	}
	return o.journal.Append(entry)
}

// mutationObserver fans successful writes out to the configured sinks.
type mutationObserver struct {
	fanout *publishers.Fanout
	log    logger.Logger
}

func (o *mutationObserver) Observe(ctx context.Context, ex restsource.Exchange) error {
	if ex.Probe || !ex.Succeeded() || ex.Request.Verb == restsource.VerbGet {
		return nil
	}

	evt := publishers.NewEvent(ex.Request.Verb.String(), ex.Resource, ex.Request.URL, ex.StatusCode, ex.Request.Body)
	delivered, err := o.fanout.Publish(ctx, evt)
	o.log.DebugObj("mutation event published", "mutation_event", map[string]any{
		"verb":      evt.Verb,
		"resource":  evt.Resource,
		"delivered": delivered,
	})
	return err
}
