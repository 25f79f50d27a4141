package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/restsource/internal/config"
	"github.com/samvad-hq/restsource/internal/logger"
	"github.com/samvad-hq/restsource/internal/storage"
	"github.com/samvad-hq/restsource/pkg/httpclient"
	"github.com/samvad-hq/restsource/pkg/publishers"
	"github.com/samvad-hq/restsource/pkg/resources"
	"github.com/samvad-hq/restsource/pkg/restsource"
)

// Runtime wires the REST source together with its model registry, request
// journal and mutation sinks.
type Runtime struct {
	cfg     *config.Config
	source  *restsource.Source
	models  *resources.Registry
	journal storage.Journal
	fanout  *publishers.Fanout
	log     logger.Logger
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	models, err := loadModels(cfg.ResourcesFile)
	if err != nil {
		return nil, err
	}
	log.InfoObj("resources registry loaded", "resources_meta", map[string]any{
		"count": len(models.All()),
		"file":  cfg.ResourcesFile,
	})

	journal, err := storage.NewJournal(cfg.JournalType, cfg.JournalPath, storage.Options{
		EntryTTL:        cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"entry_ttl_seconds":        int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.SinksFile, log)
	if err != nil {
		_ = journal.Close()
		return nil, err
	}

	srcCfg := restsource.Config{Host: cfg.RestHost, Format: cfg.RestFormat}
	client := httpclient.NewRestyClient(cfg.RestTimeout).WithAccept(httpclient.AcceptFor(srcCfg.Format))

	opts := []restsource.Option{
		restsource.WithLogger(log),
		restsource.WithConfigurer(configurersFor(cfg)...),
		restsource.WithObserver(&journalObserver{journal: journal}),
	}
	if fanout.Size() > 0 {
		opts = append(opts, restsource.WithObserver(&mutationObserver{fanout: fanout, log: log}))
	}

	source, err := restsource.New(srcCfg, client, opts...)
	if err != nil {
		_ = fanout.Close()
		_ = journal.Close()
		return nil, fmt.Errorf("init rest source: %w", err)
	}
	log.InfoObj("rest source ready", "rest_source", map[string]any{
		"host":         source.BaseURL(),
		"format":       source.Builder().Format(),
		"sinks_count":  fanout.Size(),
		"timeout_secs": int(cfg.RestTimeout.Seconds()),
	})

	return &Runtime{
		cfg:     cfg,
		source:  source,
		models:  models,
		journal: journal,
		fanout:  fanout,
		log:     log,
	}, nil
}

// Source returns the configured adapter.
func (r *Runtime) Source() *restsource.Source { return r.source }

// Model resolves a model name, falling back to using the name as the resource.
func (r *Runtime) Model(name string) resources.Model { return r.models.Resolve(name) }

// Models lists the registered models.
func (r *Runtime) Models() []resources.Model { return r.models.All() }

// History returns the most recent journal entries, newest first.
func (r *Runtime) History(limit int) ([]storage.Entry, error) {
	entries, err := r.journal.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}

// Close releases the journal and every sink.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close sinks: %w", err))
	}
	if r.journal != nil {
		if err := r.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	return errors.Join(errs...)
}

func loadModels(path string) (*resources.Registry, error) {
	if strings.TrimSpace(path) == "" {
		return resources.NewRegistry(nil)
	}
	reg, err := resources.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load resources registry: %w", err)
	}
	return reg, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	sinkSet, err := publishers.LoadSinks(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks file: %w", err)
	}
	enabled := sinkSet.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("sinks loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

func configurersFor(cfg *config.Config) []restsource.Configurer {
	var out []restsource.Configurer
	if cfg.RestPlatformToken != "" {
		out = append(out, restsource.PlatformToken(cfg.RestPlatformToken))
	}
	if cfg.RestBearerToken != "" {
		out = append(out, restsource.BearerToken(cfg.RestBearerToken))
	}
	return out
}
