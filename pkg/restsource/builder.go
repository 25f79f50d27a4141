package restsource

import (
	"reflect"
	"strings"
)

const pathDelimiter = "/"

// Builder turns operations into Request descriptors. It performs no I/O and
// holds nothing but the immutable Config, so the same inputs always yield the
// same Request.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for cfg. An empty format falls back to DefaultFormat.
func NewBuilder(cfg Config) Builder {
	return Builder{cfg: cfg.normalized()}
}

// BaseURL returns the configured host verbatim.
func (b Builder) BaseURL() string { return b.cfg.Host }

// Format returns the serialization extension appended to read URLs.
func (b Builder) Format() string { return b.cfg.Format }

// BuildQuery builds a custom call against /{resource}/{action}. args[0] is
// either a plain action or a map holding an "action" key; args[1], when
// present, becomes the body of put and post calls.
func (b Builder) BuildQuery(resource, method string, args []any) (Request, error) {
	if len(args) == 0 {
		return Request{}, errMissingRequestInfo
	}

	opts, ok := mappingOf(args[0])
	if !ok {
		opts.Set("action", args[0])
	}

	action, _ := opts.Get("action")
	if isEmpty(action) {
		return Request{}, errMissingAction
	}

	verb, err := ParseVerb(method)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Verb: verb,
		URL:  b.resourceURL(resource, segment(action)),
	}
	if verb.carriesBody() && len(args) > 1 && args[1] != nil {
		req.Body = args[1]
	}
	return req, nil
}

// BuildCreate builds the insert-or-update call for record. A record without an
// id that does not already exist remotely is posted to the collection; anything
// else is put to /{resource}/{id}.
func (b Builder) BuildCreate(resource string, record Fields, exists bool) Request {
	id, _ := record.Get("id")
	if isEmpty(id) && !exists {
		return Request{Verb: VerbPost, URL: b.resourceURL(resource), Body: record}
	}
	return Request{Verb: VerbPut, URL: b.resourceURL(resource, segment(id)), Body: record}
}

// BuildRead builds the GET for a find. A non-empty id condition becomes a path
// segment, the format extension is appended to the path, and paging directives
// join the remaining conditions in the query string. q is not modified.
func (b Builder) BuildRead(resource string, q QueryData) Request {
	conds := q.Conditions.Clone()

	segments := []string{resource}
	if q.Action != "" {
		segments = append(segments, q.Action)
	}
	if id, ok := conds.Get("id"); ok && !isEmpty(id) {
		segments = append(segments, segment(id))
		conds.Delete("id")
	}

	u := strings.TrimRight(joinPath(b.cfg.Host, segments...), pathDelimiter) + "." + b.cfg.Format
	promotePaging(&conds, q)

	if qs := conds.Encode(); qs != "" {
		u += "?" + qs
	}
	return Request{Verb: VerbGet, URL: u}
}

// BuildUpdate builds the PUT for record. conditions are accepted for parity with
// the host layer but take no part in the request; the record itself must carry
// whatever the remote API needs to find its target.
func (b Builder) BuildUpdate(resource string, record Fields, _ Fields) Request {
	return Request{Verb: VerbPut, URL: b.resourceURL(resource), Body: record}
}

// BuildDelete builds the DELETE for /{resource}/{id}.
func (b Builder) BuildDelete(resource string, id any) Request {
	return Request{Verb: VerbDelete, URL: b.resourceURL(resource, segment(id))}
}

// mappingOf reports whether v is an options mapping rather than a plain action:
// Fields or any map keyed by strings.
func mappingOf(v any) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case *Fields:
		if m == nil {
			return Fields{}, true
		}
		return *m, true
	case map[string]any:
		return FieldsFromMap(m), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return Fields{}, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return FieldsFromMap(m), true
}

// resourceURL appends /{resource}[/{segment}...] to the base URL. Segments are
// used verbatim, so an empty id still yields a trailing delimiter.
func (b Builder) resourceURL(resource string, segments ...string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(b.BaseURL(), pathDelimiter))
	sb.WriteString(pathDelimiter)
	sb.WriteString(strings.Trim(resource, pathDelimiter))
	for _, s := range segments {
		sb.WriteString(pathDelimiter)
		sb.WriteString(s)
	}
	return sb.String()
}

// joinPath joins base and segments with exactly one delimiter between each.
func joinPath(base string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, strings.TrimRight(base, pathDelimiter))
	for _, s := range segments {
		if s = strings.Trim(s, pathDelimiter); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, pathDelimiter)
}

var pagingKeys = []string{"limit", "offset", "order", "page"}

// promotePaging copies the non-empty paging directives of q into conds.
func promotePaging(conds *Fields, q QueryData) {
	values := map[string]any{
		"limit":  q.Limit,
		"offset": q.Offset,
		"order":  q.Order,
		"page":   q.Page,
	}
	for _, key := range pagingKeys {
		if v := values[key]; !isEmpty(v) {
			conds.Set(key, v)
		}
	}
}
