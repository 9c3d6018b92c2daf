package assets

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
)

//go:embed embedded
var embeddedFS embed.FS

// Embedded serves the build-time copies of every companion document.
// These may be stale relative to the published set but are always
// complete, which is what makes offline installation total.
type Embedded struct {
	fsys fs.FS
}

// NewEmbedded returns the provider backed by the compiled-in assets.
func NewEmbedded() *Embedded {
	sub, err := fs.Sub(embeddedFS, "embedded")
	if err != nil {
		// The subdirectory is part of this source tree; failing here
		// means a broken build, not a runtime condition.
		panic(err)
	}
	return &Embedded{fsys: sub}
}

// Fetch implements Provider.
func (e *Embedded) Fetch(_ context.Context, name string) ([]byte, error) {
	data, err := fs.ReadFile(e.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("no embedded copy of %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("embedded copy of %s is empty", name)
	}
	return data, nil
}

// Names returns every embedded asset name, for completeness checks.
func (e *Embedded) Names() ([]string, error) {
	var names []string
	err := fs.WalkDir(e.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking embedded assets: %w", err)
	}
	return names, nil
}
