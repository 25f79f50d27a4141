package restsource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type decodeFunc func([]byte, any) error

// decoderFor picks the body decoder matching the configured format. It returns
// nil for formats no decoder exists for.
func decoderFor(format string) decodeFunc {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return decodeJSON
	case "yaml", "yml":
		return yaml.Unmarshal
	default:
		return nil
	}
}

// decodeJSON is json.Unmarshal keeping numbers as json.Number, so integer ids
// beyond float64 precision come back intact.
func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

var errEmptyBody = errors.New("empty response body")

// Normalize extracts the payload of a JSON read envelope. It returns the value
// of "data" when "success" is truthy and an empty list otherwise, including when
// the body is not an envelope at all.
func Normalize(body []byte) any {
	data, _ := normalizeWith(decodeJSON, body)
	return data
}

// normalizeWith is Normalize with a pluggable decoder. The error explains why
// the result was forced empty; callers treat it as informational.
func normalizeWith(decode decodeFunc, body []byte) (any, error) {
	if len(body) == 0 {
		return []any{}, errEmptyBody
	}

	var env map[string]any
	if err := decode(body, &env); err != nil {
		return []any{}, fmt.Errorf("decode envelope: %w", err)
	}
	if _, ok := env["success"]; !ok {
		return []any{}, errors.New("envelope has no success field")
	}
	if isEmpty(env["success"]) {
		return []any{}, nil
	}
	return env["data"], nil
}
