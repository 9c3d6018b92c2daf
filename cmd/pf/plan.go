package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/planfirst/planfirst/internal/config"
	"github.com/planfirst/planfirst/internal/state"
	"github.com/planfirst/planfirst/internal/types"
	"github.com/planfirst/planfirst/internal/ui"
)

var planCmd = &cobra.Command{
	Use:     "plan",
	GroupID: "plans",
	Short:   "Create, inspect and advance plans",
}

var planCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Draft a new plan",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		titleFlag, _ := cmd.Flags().GetString("title")
		var title string
		switch {
		case len(args) > 0 && titleFlag != "" && args[0] != titleFlag:
			FatalError("cannot specify different titles as both positional argument and --title flag")
		case len(args) > 0:
			title = args[0]
		case titleFlag != "":
			title = titleFlag
		default:
			FatalError("title required")
		}

		summary, _ := cmd.Flags().GetString("summary")
		steps, _ := cmd.Flags().GetString("steps")
		author, _ := cmd.Flags().GetString("author")

		store, err := openStore()
		if err != nil {
			FatalError("%v", err)
		}

		plan, err := store.CreatePlan(context.Background(), &types.Plan{
			Title:   title,
			Summary: summary,
			Steps:   steps,
			Author:  config.GetActor(author),
		})
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(plan)
			return
		}
		if !quiet {
			fmt.Printf("%s Created plan %s: %s\n", ui.RenderPass("✓"), ui.RenderID(plan.ID), plan.Title)
			fmt.Printf("  Status: %s (submit with 'pf plan submit %s')\n", ui.StatusStyle(string(plan.Status)), plan.ID)
		}
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	Run: func(cmd *cobra.Command, _ []string) {
		statusFlag, _ := cmd.Flags().GetString("status")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")
		watch, _ := cmd.Flags().GetBool("watch")

		filter := &types.PlanFilter{TitleSearch: search, Limit: limit}
		if statusFlag != "" {
			status := types.Status(statusFlag)
			if !status.IsValid() {
				FatalError("invalid status %q (valid: %v)", statusFlag, types.AllStatuses)
			}
			filter.Status = &status
		}

		store, err := openStore()
		if err != nil {
			FatalError("%v", err)
		}

		ctx := context.Background()
		if watch {
			if jsonOutput {
				FatalError("--watch and --json cannot be combined")
			}
			watchPlans(ctx, store, filter)
			return
		}

		plans, err := store.ListPlans(ctx, filter)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(plans)
			return
		}
		displayPlans(plans)
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show one plan in full",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			FatalError("%v", err)
		}

		plan, err := store.GetPlan(context.Background(), args[0])
		if err != nil {
			FatalError("%v", err)
		}
		if plan == nil {
			FatalError("plan %s not found", args[0])
		}

		if jsonOutput {
			printJSON(plan)
			return
		}

		fmt.Printf("%s %s\n", ui.RenderID(plan.ID), ui.RenderAccent(plan.Title))
		fmt.Printf("  Status:  %s\n", ui.StatusStyle(string(plan.Status)))
		fmt.Printf("  Created: %s\n", plan.Created)
		fmt.Printf("  Updated: %s\n", plan.Updated)
		if plan.Author != "" {
			fmt.Printf("  Author:  %s\n", plan.Author)
		}
		if plan.Summary != "" {
			fmt.Printf("\n%s\n  %s\n", ui.RenderMuted("Summary:"), plan.Summary)
		}
		if plan.Steps != "" {
			fmt.Printf("\n%s\n%s\n", ui.RenderMuted("Steps:"), plan.Steps)
		}
		if plan.Notes != "" {
			fmt.Printf("\n%s\n  %s\n", ui.RenderMuted("Notes:"), plan.Notes)
		}
		if len(plan.RelatedDecisions) > 0 {
			fmt.Printf("\n%s %v\n", ui.RenderMuted("Related decisions:"), plan.RelatedDecisions)
		}
		if next := plan.Status.NextStatuses(); len(next) > 0 {
			fmt.Printf("\n%s %v\n", ui.RenderMuted("Next:"), next)
		}
	},
}

func displayPlans(plans []*types.Plan) {
	if len(plans) == 0 {
		fmt.Println("No plans found.")
		return
	}
	for _, p := range plans {
		fmt.Printf("%s  %-14s  %s\n", ui.RenderID(p.ID), ui.StatusStyle(string(p.Status)), p.Title)
	}
	fmt.Println()
	fmt.Printf("Total: %d plans\n", len(plans))
}

// watchDebounce coalesces bursts of filesystem events into a single
// re-render.
const watchDebounce = 500 * time.Millisecond

// watchPlans re-renders the listing whenever plans/state.yaml changes.
func watchPlans(ctx context.Context, store *state.Store, filter *types.PlanFilter) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		return
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: atomic renames replace the
	// file inode on every write.
	plansDir := filepath.Dir(store.DocumentPath(state.KindPlans))
	if err := watcher.Add(plansDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching directory: %v\n", err)
		return
	}

	render := func() {
		plans, err := store.ListPlans(ctx, filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		displayPlans(plans)
		fmt.Fprintf(os.Stderr, "\nWatching for changes... (Press Ctrl+C to exit)\n")
	}
	render()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var debounceTimer *time.Timer
	stateFile := filepath.Base(store.DocumentPath(state.KindPlans))

	for {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nStopped watching.\n")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if filepath.Base(event.Name) != stateFile {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, render)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		FatalError("marshaling output: %v", err)
	}
	fmt.Println(string(data))
}

func init() {
	planCreateCmd.Flags().String("title", "", "Plan title (alternative to positional argument)")
	planCreateCmd.Flags().String("summary", "", "One-paragraph summary of the plan")
	planCreateCmd.Flags().String("steps", "", "Implementation steps, free text")
	planCreateCmd.Flags().String("author", "", "Author (defaults to configured actor)")

	planListCmd.Flags().String("status", "", "Filter by status")
	planListCmd.Flags().String("search", "", "Filter by title substring")
	planListCmd.Flags().Int("limit", 0, "Maximum number of plans to show (0 = all)")
	planListCmd.Flags().BoolP("watch", "w", false, "Watch for changes and re-display")

	planCmd.AddCommand(planCreateCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	rootCmd.AddCommand(planCmd)
}
