// Package restsource lets a record-oriented data layer use a REST API as its
// store. Operations against a model are translated into HTTP requests against
// the model's remote resource, and read envelopes are unwrapped into plain data.
package restsource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/restsource/pkg/httpclient"
)

// DefaultFormat is the extension appended to read URLs when none is configured.
const DefaultFormat = "json"

// Config is the static configuration of a Source.
type Config struct {
	// Host is the base URL, e.g. https://api.example.com/v1.
	Host string
	// Format is the serialization extension appended to read paths.
	Format string
}

func (c Config) normalized() Config {
	c.Host = strings.TrimSpace(c.Host)
	c.Format = strings.Trim(strings.TrimSpace(c.Format), ".")
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	return c
}

// Source is the adapter. It keeps no mutable state after New and is safe for
// concurrent use.
type Source struct {
	builder     Builder
	client      httpclient.Client
	decode      decodeFunc
	configurers []Configurer
	observers   []Observer
	log         Logger
}

// Option customizes a Source.
type Option func(*Source)

// WithConfigurer registers request hooks, applied in order before dispatch.
func WithConfigurer(configurers ...Configurer) Option {
	return func(s *Source) {
		s.configurers = append(s.configurers, configurers...)
	}
}

// WithObserver registers observers notified after each dispatch.
func WithObserver(observers ...Observer) Option {
	return func(s *Source) {
		for _, o := range observers {
			if o != nil {
				s.observers = append(s.observers, o)
			}
		}
	}
}

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(log Logger) Option {
	return func(s *Source) {
		if log != nil {
			s.log = log
		}
	}
}

// New builds a Source talking to cfg.Host through client.
func New(cfg Config, client httpclient.Client, opts ...Option) (*Source, error) {
	cfg = cfg.normalized()
	if cfg.Host == "" {
		return nil, errors.New("rest source host is required")
	}
	if client == nil {
		return nil, errors.New("rest source http client is required")
	}
	decode := decoderFor(cfg.Format)
	if decode == nil {
		return nil, fmt.Errorf("%w: no response decoder for format %q", ErrInvalidArgument, cfg.Format)
	}

	s := &Source{
		builder: NewBuilder(cfg),
		client:  client,
		decode:  decode,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseURL returns the configured host.
func (s *Source) BaseURL() string { return s.builder.BaseURL() }

// Builder exposes the request builder used by s.
func (s *Source) Builder() Builder { return s.builder }

// ListSources always reports success. Remote resources cannot be enumerated.
func (s *Source) ListSources() bool { return true }

// Query executes a custom call: method is get, post, put or delete; args[0] is
// an action or a map with an "action" key; args[1] is the put/post body.
// The transport response is returned as is.
func (s *Source) Query(ctx context.Context, model Model, method string, args ...any) (httpclient.Response, error) {
	resource, err := resourceOf(model)
	if err != nil {
		return nil, err
	}
	req, err := s.builder.BuildQuery(resource, method, args)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, resource, req, false)
}

// Create saves a record made of fields and values. A record without an id is
// first looked up remotely; it is posted when nothing is found and put to its
// id path otherwise.
func (s *Source) Create(ctx context.Context, model Model, fields []string, values []any) (httpclient.Response, error) {
	resource, err := resourceOf(model)
	if err != nil {
		return nil, err
	}
	record, err := Combine(fields, values)
	if err != nil {
		return nil, err
	}

	exists := false
	if id, _ := record.Get("id"); isEmpty(id) {
		var probe Fields
		probe.Set("id", id)
		found, err := s.read(ctx, resource, QueryData{Conditions: probe}, true)
		if err != nil {
			return nil, fmt.Errorf("probe existing %s: %w", resource, err)
		}
		exists = !isEmpty(found)
	}

	return s.dispatch(ctx, resource, s.builder.BuildCreate(resource, record, exists), false)
}

// Read fetches records and unwraps the response envelope. A failed or
// malformed envelope yields an empty list, not an error.
func (s *Source) Read(ctx context.Context, model Model, q QueryData) (any, error) {
	resource, err := resourceOf(model)
	if err != nil {
		return nil, err
	}
	return s.read(ctx, resource, q, false)
}

// Update puts the record made of fields and values to /{resource}.
// conditions are not sent.
func (s *Source) Update(ctx context.Context, model Model, fields []string, values []any, conditions Fields) (httpclient.Response, error) {
	resource, err := resourceOf(model)
	if err != nil {
		return nil, err
	}
	record, err := Combine(fields, values)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, resource, s.builder.BuildUpdate(resource, record, conditions), false)
}

// Delete removes /{resource}/{id}.
func (s *Source) Delete(ctx context.Context, model Model, id any) (httpclient.Response, error) {
	resource, err := resourceOf(model)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, resource, s.builder.BuildDelete(resource, id), false)
}

func (s *Source) read(ctx context.Context, resource string, q QueryData, probe bool) (any, error) {
	resp, err := s.dispatch(ctx, resource, s.builder.BuildRead(resource, q), probe)
	if err != nil {
		return nil, err
	}

	data, reason := normalizeWith(s.decode, resp.Body())
	if reason != nil {
		s.log.DebugObj("read envelope treated as empty", "envelope_meta", map[string]any{
			"resource":    resource,
			"status_code": resp.StatusCode(),
			"reason":      reason.Error(),
		})
	}
	return data, nil
}

// dispatch applies the configurers, sends req and notifies observers.
func (s *Source) dispatch(ctx context.Context, resource string, req Request, probe bool) (httpclient.Response, error) {
	if err := applyConfigurers(ctx, &req, s.configurers); err != nil {
		return nil, fmt.Errorf("configure request: %w", err)
	}

	start := time.Now()
	resp, err := s.send(ctx, req)
	ex := Exchange{
		Resource: resource,
		Request:  req,
		Probe:    probe,
		Elapsed:  time.Since(start),
	}
	if resp != nil {
		ex.StatusCode = resp.StatusCode()
	}
	if err != nil {
		err = &TransportError{Verb: req.Verb, URL: req.URL, Err: err}
		ex.Err = err
	}

	s.log.DebugObj("rest request dispatched", "rest_request", map[string]any{
		"verb":        req.Verb.String(),
		"url":         req.URL,
		"status_code": ex.StatusCode,
		"probe":       probe,
		"elapsed_ms":  ex.Elapsed.Milliseconds(),
	})
	s.notify(ctx, ex)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// send maps the verb onto the matching transport call.
func (s *Source) send(ctx context.Context, req Request) (httpclient.Response, error) {
	switch req.Verb {
	case VerbGet:
		return s.client.Get(ctx, req.URL, req.Headers)
	case VerbPost:
		return s.client.Post(ctx, req.URL, req.Body, req.Headers)
	case VerbPut:
		return s.client.Put(ctx, req.URL, req.Body, req.Headers)
	case VerbDelete:
		return s.client.Delete(ctx, req.URL, req.Headers)
	default:
		return nil, fmt.Errorf("unsupported verb %v", req.Verb)
	}
}

func (s *Source) notify(ctx context.Context, ex Exchange) {
	for _, o := range s.observers {
		if err := o.Observe(ctx, ex); err != nil {
			s.log.WarnObj("rest observer failed", "observer_error", map[string]any{
				"verb":  ex.Request.Verb.String(),
				"url":   ex.Request.URL,
				"error": err.Error(),
			})
		}
	}
}
