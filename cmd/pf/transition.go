package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planfirst/planfirst/internal/types"
	"github.com/planfirst/planfirst/internal/ui"
)

// transitionVerbs maps each workflow verb to its target status. The
// store validates the edge; a verb applied from the wrong status fails
// with a message naming both statuses.
var transitionVerbs = []struct {
	use    string
	short  string
	target types.Status
}{
	{"submit", "Submit a draft plan for review", types.StatusPendingReview},
	{"approve", "Approve a plan under review", types.StatusApproved},
	{"reject", "Reject a plan under review", types.StatusRejected},
	{"revise", "Send a plan under review back to draft", types.StatusDraft},
	{"start", "Start implementing an approved plan", types.StatusInProgress},
	{"complete", "Mark an in-progress plan completed", types.StatusCompleted},
	{"archive", "Archive a completed plan", types.StatusArchived},
}

func newTransitionCmd(use, short string, target types.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <plan-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store, err := openStore()
			if err != nil {
				FatalError("%v", err)
			}

			plan, err := store.TransitionPlan(context.Background(), args[0], target)
			if err != nil {
				var terr *types.TransitionError
				if errors.As(err, &terr) {
					fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("✗"), terr)
					os.Exit(1)
				}
				FatalError("%v", err)
			}

			if jsonOutput {
				printJSON(plan)
				return
			}
			if !quiet {
				fmt.Printf("%s %s is now %s\n", ui.RenderPass("✓"), ui.RenderID(plan.ID), ui.StatusStyle(string(plan.Status)))
			}
		},
	}
}

func init() {
	for _, v := range transitionVerbs {
		planCmd.AddCommand(newTransitionCmd(v.use, v.short, v.target))
	}
}
