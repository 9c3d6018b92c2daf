package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planfirst/planfirst/internal/assets"
	"github.com/planfirst/planfirst/internal/config"
	"github.com/planfirst/planfirst/internal/scaffold"
	"github.com/planfirst/planfirst/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "setup",
	Short:   "Install the planning workflow in the current directory",
	Long: `Install the planning workflow by creating the .copilot tracking tree,
the .github agent surface, the state documents and the companion
documents (agent persona, instructions, prompts, standards).

Companion documents are fetched from the published location and fall
back to the copies embedded in this binary, so installation works
offline. Re-running refreshes companion documents and never touches
existing plan records.

With --minimal: only the tracking tree, state documents and the core
persona/instructions are installed (no prompts, no standards).

With --no-standards: skip the per-language standards documents.`,
	Run: func(cmd *cobra.Command, _ []string) {
		minimal, _ := cmd.Flags().GetBool("minimal")
		withStandards, _ := cmd.Flags().GetBool("with-standards")
		noStandards, _ := cmd.Flags().GetBool("no-standards")
		offline, _ := cmd.Flags().GetBool("offline")

		if cmd.Flags().Changed("with-standards") && withStandards && noStandards {
			FatalError("cannot specify both --with-standards and --no-standards")
		}
		standards := config.GetBool("standards.enabled")
		if cmd.Flags().Changed("with-standards") {
			standards = withStandards
		}
		if noStandards {
			standards = false
		}

		var remote assets.Provider
		if !offline && !config.GetBool("assets.offline") {
			remote = assets.NewRemote(config.GetString("assets.base-url"), config.AssetTimeout())
		}

		cwd, err := os.Getwd()
		if err != nil {
			FatalError("resolving working directory: %v", err)
		}

		res, err := scaffold.Install(context.Background(), scaffold.Options{
			Root:      cwd,
			Minimal:   minimal,
			Standards: standards,
			Remote:    remote,
			Embedded:  assets.NewEmbedded(),
			Version:   Version,
		})
		if err != nil {
			FatalError("%v", err)
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderWarn("⚠"), w)
		}

		if quiet {
			return
		}
		fmt.Printf("\n%s pf initialized successfully!\n\n", ui.RenderPass("✓"))
		if len(res.DirsCreated) > 0 {
			fmt.Printf("  Created %d directories, wrote %d files\n", len(res.DirsCreated), len(res.FilesWritten))
		} else {
			fmt.Printf("  Refreshed %d files (existing installation)\n", len(res.FilesWritten))
		}
		if len(res.StatePreserved) > 0 {
			fmt.Printf("  Preserved %d existing state documents\n", len(res.StatePreserved))
		}
		if len(res.Fallbacks) > 0 {
			fmt.Printf("  %s %d documents installed from embedded copies\n", ui.RenderWarn("⚠"), len(res.Fallbacks))
		}
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Printf("  %s draft your first plan\n", ui.RenderAccent("pf plan create \"<title>\""))
		fmt.Printf("  %s see the workflow reference\n", ui.RenderAccent("cat .copilot/instructions.md"))
	},
}

func init() {
	initCmd.Flags().Bool("with-standards", true, "Install per-language standards documents")
	initCmd.Flags().Bool("no-standards", false, "Skip per-language standards documents")
	initCmd.Flags().Bool("minimal", false, "Install only the tracking tree and core documents")
	initCmd.Flags().Bool("offline", false, "Skip remote fetches, use embedded copies")
	rootCmd.AddCommand(initCmd)
}
