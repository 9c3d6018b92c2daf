package assets

import "path/filepath"

// Asset describes one installable companion document.
type Asset struct {
	// Name is the logical name, identical in the embedded tree and
	// under the remote base URL (e.g. "standards/general.md").
	Name string
	// Target is the install path relative to the project root, in
	// slash form.
	Target string
	// Extra assets are skipped by a minimal install.
	Extra bool
	// Standard marks per-language standards documents, controlled by
	// --with-standards / --no-standards.
	Standard bool
}

// TargetPath returns the OS-specific install path under root.
func (a Asset) TargetPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(a.Target))
}

// Catalog lists every companion document the installer places in a
// project. The persona and instruction documents are the workflow's
// backbone and survive --minimal; prompts and standards are extras.
var Catalog = []Asset{
	{Name: "agents/planning.agent.md", Target: ".github/agents/planning.agent.md"},
	{Name: "copilot-instructions.md", Target: ".github/copilot-instructions.md"},
	{Name: "instructions.md", Target: ".copilot/instructions.md"},

	{Name: "prompts/plan.prompt.md", Target: ".github/prompts/plan.prompt.md", Extra: true},
	{Name: "prompts/implement.prompt.md", Target: ".github/prompts/implement.prompt.md", Extra: true},
	{Name: "prompts/review.prompt.md", Target: ".github/prompts/review.prompt.md", Extra: true},

	{Name: "standards/general.md", Target: ".copilot/standards/general.md", Standard: true},
	{Name: "standards/go.md", Target: ".copilot/standards/go.md", Standard: true},
	{Name: "standards/python.md", Target: ".copilot/standards/python.md", Standard: true},
	{Name: "standards/typescript.md", Target: ".copilot/standards/typescript.md", Standard: true},
}

// Select returns the catalog subset for the given install shape.
func Select(minimal, standards bool) []Asset {
	var out []Asset
	for _, a := range Catalog {
		if minimal && (a.Extra || a.Standard) {
			continue
		}
		if a.Standard && !standards {
			continue
		}
		out = append(out, a)
	}
	return out
}
