package restsource

import (
	"fmt"
	"strings"
)

// Model is anything bound to a remote resource, such as "widgets".
type Model interface {
	RemoteResource() string
}

// Resource is the simplest Model: the resource name itself.
type Resource string

func (r Resource) RemoteResource() string { return string(r) }

func resourceOf(model Model) (string, error) {
	if model == nil {
		return "", fmt.Errorf("%w: missing model", ErrInvalidArgument)
	}
	resource := strings.Trim(model.RemoteResource(), "/")
	if resource == "" {
		return "", fmt.Errorf("%w: model has no remote resource", ErrInvalidArgument)
	}
	return resource, nil
}
