// Package assets resolves the companion documents the installer places
// in a project: agent persona, instructions, prompts and standards.
// Resolution is capability-based: a remote provider fetches the latest
// published copy, an embedded provider carries the build-time copy, and
// a chain composes them first-success-wins so installation succeeds
// with no network at all.
package assets

import (
	"context"
	"errors"
	"fmt"
)

// Provider resolves an asset by logical name to its content.
type Provider interface {
	// Fetch returns the asset content. Implementations must treat an
	// empty result as an error: a zero-byte companion document is
	// never valid.
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Chain tries each provider in order and returns the first success.
type Chain []Provider

// Fetch implements Provider.
func (c Chain) Fetch(ctx context.Context, name string) ([]byte, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	var errs []error
	for _, p := range c {
		data, err := p.Fetch(ctx, name)
		if err == nil {
			return data, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("asset %s: %w", name, errors.Join(errs...))
}

// FetchResult records where an asset came from, for installer output.
type FetchResult struct {
	Name     string
	Data     []byte
	Fallback bool // true when the remote copy failed and the embedded one was used
	Warning  error
}

// Resolve fetches name through remote-then-embedded, reporting whether
// the embedded fallback was taken and why.
func Resolve(ctx context.Context, remote, embedded Provider, name string) (*FetchResult, error) {
	if remote != nil {
		data, err := remote.Fetch(ctx, name)
		if err == nil {
			return &FetchResult{Name: name, Data: data}, nil
		}
		fallback, ferr := embedded.Fetch(ctx, name)
		if ferr != nil {
			return nil, fmt.Errorf("asset %s: remote failed (%v) and no embedded copy: %w", name, err, ferr)
		}
		return &FetchResult{Name: name, Data: fallback, Fallback: true, Warning: err}, nil
	}
	data, err := embedded.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return &FetchResult{Name: name, Data: data}, nil
}
