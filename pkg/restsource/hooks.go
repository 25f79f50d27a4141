package restsource

import (
	"context"
	"fmt"
	"strings"
)

// Configurer adjusts a built request right before it is dispatched, typically
// to attach authentication headers. Changes to anything but headers are
// discarded.
type Configurer func(ctx context.Context, req *Request) error

// StaticHeaders sets a fixed set of headers on every request.
func StaticHeaders(headers map[string]string) Configurer {
	cp := make(map[string]string, len(headers))
	for k, v := range headers {
		if k = strings.TrimSpace(k); k != "" {
			cp[k] = v
		}
	}
	return func(_ context.Context, req *Request) error {
		for k, v := range cp {
			req.SetHeader(k, v)
		}
		return nil
	}
}

// PlatformToken sets the Platform-Token header used by the remote platform for authentication.
func PlatformToken(token string) Configurer {
	return func(_ context.Context, req *Request) error {
		if token == "" {
			return nil
		}
		req.SetHeader("Platform-Token", token)
		return nil
	}
}

// BearerToken sets an Authorization: Bearer header.
func BearerToken(token string) Configurer {
	return func(_ context.Context, req *Request) error {
		if token == "" {
			return nil
		}
		req.SetHeader("Authorization", "Bearer "+token)
		return nil
	}
}

// applyConfigurers runs each configurer in order. Verb, URL and Body are
// restored afterwards so hooks can only contribute headers.
func applyConfigurers(ctx context.Context, req *Request, configurers []Configurer) error {
	verb, url, body := req.Verb, req.URL, req.Body
	defer func() {
		req.Verb, req.URL, req.Body = verb, url, body
	}()

	for i, c := range configurers {
		if c == nil {
			continue
		}
		if err := c(ctx, req); err != nil {
			return fmt.Errorf("configurer[%d]: %w", i, err)
		}
	}
	return nil
}
