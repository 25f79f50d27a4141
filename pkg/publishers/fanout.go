package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Fanout dispatches events to all configured publishers.
type Fanout struct {
	publishers []Publisher
}

// NewFanout builds a dispatcher that fans out events across publishers.
func NewFanout(pubs []Publisher) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		cp = append(cp, p)
	}
	return &Fanout{publishers: cp}
}

// Publish forwards the event to every registered publisher interested in its resource.
// It returns the number of publishers that successfully handled the event.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, p := range f.publishers {
		if s, ok := p.(interface{ Wants(string) bool }); ok && !s.Wants(evt.Resource) {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases publishers holding connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, p := range f.publishers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", p.Type(), p.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// scoped restricts a publisher to a set of resources.
type scoped struct {
	Publisher
	resources map[string]struct{}
}

func scope(p Publisher, resources []string) Publisher {
	if len(resources) == 0 {
		return p
	}
	set := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		set[strings.ToLower(strings.Trim(r, "/ "))] = struct{}{}
	}
	return &scoped{Publisher: p, resources: set}
}

// Wants reports whether events for resource should reach the publisher.
func (s *scoped) Wants(resource string) bool {
	_, ok := s.resources[strings.ToLower(resource)]
	return ok
}

func (s *scoped) Close() error {
	if c, ok := s.Publisher.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
