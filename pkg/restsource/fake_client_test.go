package restsource

import (
	"context"
	"sync"

	"github.com/samvad-hq/restsource/pkg/httpclient"
)

type fakeResponse struct {
	status int
	body   []byte
}

func (r fakeResponse) Body() []byte    { return r.body }
func (r fakeResponse) StatusCode() int { return r.status }

type call struct {
	verb    Verb
	url     string
	body    any
	headers map[string]string
}

// fakeClient records every call and answers from a per-verb script.
type fakeClient struct {
	mu      sync.Mutex
	calls   []call
	getBody string
	err     error
}

func (f *fakeClient) record(verb Verb, url string, body any, headers map[string]string) (httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{verb: verb, url: url, body: body, headers: headers})
	if f.err != nil {
		return nil, f.err
	}
	if verb == VerbGet {
		return fakeResponse{status: 200, body: []byte(f.getBody)}, nil
	}
	return fakeResponse{status: 201, body: []byte(`{"success":true,"echo":"` + verb.String() + `"}`)}, nil
}

func (f *fakeClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	return f.record(VerbGet, url, nil, headers)
}

func (f *fakeClient) Post(_ context.Context, url string, body any, headers map[string]string) (httpclient.Response, error) {
	return f.record(VerbPost, url, body, headers)
}

func (f *fakeClient) Put(_ context.Context, url string, body any, headers map[string]string) (httpclient.Response, error) {
	return f.record(VerbPut, url, body, headers)
}

func (f *fakeClient) Delete(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	return f.record(VerbDelete, url, nil, headers)
}
