package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planfirst/planfirst/internal/types"
	"github.com/planfirst/planfirst/internal/ui"
)

var decisionCmd = &cobra.Command{
	Use:     "decision",
	GroupID: "records",
	Short:   "Record and list project decisions",
}

var decisionAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Record a decision",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rationale, _ := cmd.Flags().GetString("rationale")
		plans, _ := cmd.Flags().GetStringSlice("plan")
		statusFlag, _ := cmd.Flags().GetString("status")

		status := types.DecisionStatus(statusFlag)
		if !status.IsValid() {
			FatalError("invalid decision status %q (valid: proposed, accepted, superseded)", statusFlag)
		}

		store, err := openStore()
		if err != nil {
			FatalError("%v", err)
		}

		decision, err := store.CreateDecision(context.Background(), &types.Decision{
			Title:        args[0],
			Status:       status,
			Rationale:    rationale,
			RelatedPlans: plans,
		})
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(decision)
			return
		}
		if !quiet {
			fmt.Printf("%s Recorded decision %s: %s\n", ui.RenderPass("✓"), ui.RenderID(decision.ID), decision.Title)
		}
	},
}

var decisionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List decisions",
	Run: func(cmd *cobra.Command, _ []string) {
		store, err := openStore()
		if err != nil {
			FatalError("%v", err)
		}

		decisions, err := store.ListDecisions(context.Background())
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(decisions)
			return
		}
		if len(decisions) == 0 {
			fmt.Println("No decisions recorded.")
			return
		}
		for _, d := range decisions {
			fmt.Printf("%s  %-10s  %s\n", ui.RenderID(d.ID), d.Status, d.Title)
			if len(d.RelatedPlans) > 0 {
				fmt.Printf("          %s %v\n", ui.RenderMuted("plans:"), d.RelatedPlans)
			}
		}
	},
}

func init() {
	decisionAddCmd.Flags().String("rationale", "", "Why this decision was taken")
	decisionAddCmd.Flags().StringSlice("plan", nil, "Related plan IDs (repeatable)")
	decisionAddCmd.Flags().String("status", string(types.DecisionAccepted), "Decision status (proposed, accepted, superseded)")

	decisionCmd.AddCommand(decisionAddCmd)
	decisionCmd.AddCommand(decisionListCmd)
	rootCmd.AddCommand(decisionCmd)
}
