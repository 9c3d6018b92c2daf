// Package scaffold installs the planning workflow into a project
// directory: the .copilot tracking tree, the .github agent surface,
// the state documents and the companion assets. Installation is
// idempotent; re-running refreshes content files and never touches
// existing records.
package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/planfirst/planfirst/internal/assets"
	"github.com/planfirst/planfirst/internal/configfile"
	"github.com/planfirst/planfirst/internal/state"
	"github.com/planfirst/planfirst/internal/types"
)

// CopilotDir is the tracking tree root, relative to the project root.
const CopilotDir = ".copilot"

// Options controls one installation run.
type Options struct {
	// Root is the project directory to install into.
	Root string
	// Minimal skips prompts and standards.
	Minimal bool
	// Standards controls the per-language standards documents. Ignored
	// when Minimal is set.
	Standards bool
	// Remote fetches published asset copies. Nil means offline: the
	// embedded copies are used without a fallback warning.
	Remote assets.Provider
	// Embedded serves the compiled-in asset copies. Required.
	Embedded assets.Provider
	// Version is recorded in metadata.json.
	Version string
	// Clock stamps the state documents. Nil uses time.Now.
	Clock func() time.Time
}

// Result reports what an installation run did.
type Result struct {
	DirsCreated    []string
	FilesWritten   []string
	StatePreserved []string
	Fallbacks      []string
	Warnings       []string
}

// copilotSubdirs are created under .copilot on every install.
var copilotSubdirs = []string{"plans", "docs", "memory", "testing", "context", "tmp"}

// Install performs the installation. Filesystem errors are fatal;
// asset fetch failures fall back to embedded copies and surface as
// warnings in the result.
func Install(ctx context.Context, opts Options) (*Result, error) {
	if opts.Embedded == nil {
		return nil, fmt.Errorf("scaffold: embedded asset provider is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	now := clock().UTC()
	res := &Result{}

	if err := createDirs(opts, res); err != nil {
		return nil, err
	}

	copilotDir := filepath.Join(opts.Root, CopilotDir)
	if err := writeGitignore(copilotDir, res); err != nil {
		return nil, err
	}
	if err := writeMetadata(copilotDir, opts, now, res); err != nil {
		return nil, err
	}
	if err := ensureState(copilotDir, now, res); err != nil {
		return nil, err
	}
	if err := installAssets(ctx, opts, res); err != nil {
		return nil, err
	}

	return res, nil
}

func createDirs(opts Options, res *Result) error {
	var dirs []string
	for _, sub := range copilotSubdirs {
		dirs = append(dirs, filepath.Join(CopilotDir, sub))
	}
	if !opts.Minimal && opts.Standards {
		dirs = append(dirs, filepath.Join(CopilotDir, "standards"))
	}
	dirs = append(dirs, filepath.Join(".github", "agents"))
	if !opts.Minimal {
		dirs = append(dirs, filepath.Join(".github", "prompts"))
	}

	for _, dir := range dirs {
		abs := filepath.Join(opts.Root, dir)
		if _, err := os.Stat(abs); err == nil {
			continue
		}
		if err := os.MkdirAll(abs, 0750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		res.DirsCreated = append(res.DirsCreated, dir)
	}
	return nil
}

// gitignoreContent keeps lockfiles and scratch space out of version
// control while the tracking documents themselves stay committed.
const gitignoreContent = "tmp/\n*.lock\n"

func writeGitignore(copilotDir string, res *Result) error {
	path := filepath.Join(copilotDir, ".gitignore")
	if err := os.WriteFile(path, []byte(gitignoreContent), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	res.FilesWritten = append(res.FilesWritten, filepath.Join(CopilotDir, ".gitignore"))
	return nil
}

func writeMetadata(copilotDir string, opts Options, now time.Time, res *Result) error {
	cfg := configfile.DefaultConfig()
	cfg.PfVersion = opts.Version
	cfg.Created = now.Format(types.TimestampLayout)
	cfg.Minimal = opts.Minimal
	cfg.Standards = !opts.Minimal && opts.Standards

	// Reinstall keeps the original creation stamp.
	if prev, err := configfile.Load(copilotDir); err == nil && prev != nil && prev.Created != "" {
		cfg.Created = prev.Created
	}

	if err := cfg.Save(copilotDir); err != nil {
		return err
	}
	res.FilesWritten = append(res.FilesWritten, filepath.Join(CopilotDir, configfile.ConfigFileName))
	return nil
}

func ensureState(copilotDir string, now time.Time, res *Result) error {
	for _, kind := range state.AllKinds {
		path := filepath.Join(copilotDir, kind.Path())
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			res.StatePreserved = append(res.StatePreserved, filepath.Join(CopilotDir, kind.Path()))
			continue
		}
		if err := state.EnsureDocument(copilotDir, kind, now); err != nil {
			return err
		}
		res.FilesWritten = append(res.FilesWritten, filepath.Join(CopilotDir, kind.Path()))
	}
	return nil
}

func installAssets(ctx context.Context, opts Options, res *Result) error {
	standards := !opts.Minimal && opts.Standards
	for _, asset := range assets.Select(opts.Minimal, standards) {
		fetched, err := assets.Resolve(ctx, opts.Remote, opts.Embedded, asset.Name)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", asset.Name, err)
		}

		target := asset.TargetPath(opts.Root)
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return fmt.Errorf("creating directory for %s: %w", asset.Target, err)
		}
		if err := os.WriteFile(target, fetched.Data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", asset.Target, err)
		}

		res.FilesWritten = append(res.FilesWritten, asset.Target)
		if fetched.Fallback {
			res.Fallbacks = append(res.Fallbacks, asset.Name)
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s: remote fetch failed (%v), used embedded copy", asset.Name, fetched.Warning))
		}
	}
	return nil
}
