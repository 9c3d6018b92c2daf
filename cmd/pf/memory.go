package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planfirst/planfirst/internal/types"
	"github.com/planfirst/planfirst/internal/ui"
)

var memoryCmd = &cobra.Command{
	Use:     "memory",
	GroupID: "records",
	Short:   "Record and list durable agent memory",
}

var memoryAddCmd = &cobra.Command{
	Use:   "add <topic> <content>",
	Short: "Record a memory entry",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		plans, _ := cmd.Flags().GetStringSlice("plan")

		store, err := openStore()
		if err != nil {
			FatalError("%v", err)
		}

		memory, err := store.CreateMemory(context.Background(), &types.Memory{
			Topic:        args[0],
			Content:      args[1],
			RelatedPlans: plans,
		})
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(memory)
			return
		}
		if !quiet {
			fmt.Printf("%s Recorded %s: %s\n", ui.RenderPass("✓"), ui.RenderID(memory.ID), memory.Topic)
		}
	},
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memory entries",
	Run: func(cmd *cobra.Command, _ []string) {
		store, err := openStore()
		if err != nil {
			FatalError("%v", err)
		}

		memories, err := store.ListMemories(context.Background())
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(memories)
			return
		}
		if len(memories) == 0 {
			fmt.Println("No memory entries.")
			return
		}
		for _, m := range memories {
			fmt.Printf("%s  %s\n", ui.RenderID(m.ID), ui.RenderAccent(m.Topic))
			fmt.Printf("         %s\n", m.Content)
		}
	},
}

func init() {
	memoryAddCmd.Flags().StringSlice("plan", nil, "Related plan IDs (repeatable)")

	memoryCmd.AddCommand(memoryAddCmd)
	memoryCmd.AddCommand(memoryListCmd)
	rootCmd.AddCommand(memoryCmd)
}
