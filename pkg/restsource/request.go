package restsource

import (
	"fmt"
	"strings"
)

// Verb is one of the HTTP methods the adapter dispatches.
type Verb int

const (
	VerbGet Verb = iota + 1
	VerbPost
	VerbPut
	VerbDelete
)

func (v Verb) String() string {
	switch v {
	case VerbGet:
		return "GET"
	case VerbPost:
		return "POST"
	case VerbPut:
		return "PUT"
	case VerbDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("Verb(%d)", int(v))
	}
}

// ParseVerb maps a method name such as "get" or "POST" to a Verb.
func ParseVerb(method string) (Verb, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "get":
		return VerbGet, nil
	case "post":
		return VerbPost, nil
	case "put":
		return VerbPut, nil
	case "delete":
		return VerbDelete, nil
	default:
		return 0, fmt.Errorf("%w: unsupported method %q", ErrInvalidArgument, method)
	}
}

// carriesBody reports whether requests with this verb may send a payload.
func (v Verb) carriesBody() bool {
	return v == VerbPost || v == VerbPut
}

// Request describes one HTTP call. A new Request is built for every operation.
type Request struct {
	Verb    Verb
	URL     string
	Body    any
	Headers map[string]string
}

// SetHeader sets a request header, allocating the header map on first use.
func (r *Request) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// QueryData carries the parameters of a read. Limit, Offset, Order and Page are
// promoted into the query string when set.
type QueryData struct {
	Action     string
	Conditions Fields
	Limit      any
	Offset     any
	Order      any
	Page       any
}
