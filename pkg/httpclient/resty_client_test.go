package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientVerbsAndHeaders(t *testing.T) {
	type seen struct {
		method string
		path   string
		body   string
		header string
		accept string
		ctype  string
	}
	var got []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got = append(got, seen{
			method: r.Method,
			path:   r.URL.Path,
			body:   string(raw),
			header: r.Header.Get("X-Token"),
			accept: r.Header.Get("Accept"),
			ctype:  r.Header.Get("Content-Type"),
		})
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second).WithAccept(AcceptFor("json"))
	headers := map[string]string{"X-Token": "t"}
	ctx := context.Background()

	resp, err := client.Get(ctx, srv.URL+"/widgets.json", headers)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusAccepted {
		t.Fatalf("StatusCode = %d", resp.StatusCode())
	}
	if string(resp.Body()) != `{"success":true}` {
		t.Fatalf("Body = %s", resp.Body())
	}
	if _, err := client.Post(ctx, srv.URL+"/widgets", map[string]any{"name": "x"}, headers); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if _, err := client.Put(ctx, srv.URL+"/widgets/1", map[string]any{"name": "y"}, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := client.Delete(ctx, srv.URL+"/widgets/1", nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(got))
	}
	wantMethods := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}
	for i, m := range wantMethods {
		if got[i].method != m {
			t.Fatalf("request %d method = %s, want %s", i, got[i].method, m)
		}
		if got[i].accept != "application/json" {
			t.Fatalf("request %d accept = %q", i, got[i].accept)
		}
	}
	if got[0].header != "t" || got[1].header != "t" {
		t.Fatalf("custom header not forwarded: %+v", got[:2])
	}
	if got[0].body != "" || got[3].body != "" {
		t.Fatalf("GET/DELETE must not carry a body: %+v", got)
	}
	var posted map[string]any
	if err := json.Unmarshal([]byte(got[1].body), &posted); err != nil {
		t.Fatalf("decode posted body: %v", err)
	}
	if posted["name"] != "x" || got[1].ctype != "application/json" {
		t.Fatalf("unexpected post body=%s content-type=%s", got[1].body, got[1].ctype)
	}
}

func TestRestyClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewRestyClient(time.Second)
	if _, err := client.Get(context.Background(), url, nil); err == nil {
		t.Fatalf("expected error from closed server")
	}
}
