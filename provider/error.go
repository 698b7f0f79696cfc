package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies why an adapter produced no answer.
type Kind int

const (
	KindMissingCredential Kind = iota + 1
	KindTransport
	KindStatus
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing credential"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed payload"
	default:
		return "unknown"
	}
}

// Error is returned by adapters that could not run. A nil error with zero records is a genuine empty answer.
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MissingCredential reports that provider cannot be queried without what.
func MissingCredential(provider, what string) error {
	return &Error{Provider: provider, Kind: KindMissingCredential, Err: errors.New(what + " is not set")}
}

// KindOf extracts the Kind of an adapter error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is an adapter error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

const maxBody = 8 << 20

// Fetch sends req and decodes a JSON response into v, classifying any failure as an *Error.
func Fetch(ctx context.Context, client Doer, req *http.Request, name string, v any) error {
	req = req.WithContext(ctx)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Provider: name, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return &Error{Provider: name, Kind: KindStatus, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &Error{Provider: name, Kind: KindTransport, Err: err}
		}
		return &Error{Provider: name, Kind: KindMalformed, Err: err}
	}

	return nil
}
