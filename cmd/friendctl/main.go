package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	elderFlag string
	rootCmd   = &cobra.Command{
		Use:   "friendctl",
		Short: "CLI client for the memory friend REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Memory friend service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "Session token (omit when the server runs with auth bypassed)")
	rootCmd.PersistentFlags().StringVarP(&elderFlag, "elder", "e", "", "Elder ID override (caregivers with multiple links)")

	memoriesCmd := &cobra.Command{Use: "memories", Short: "Work with memories"}

	addCmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Record a new memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memType, _ := cmd.Flags().GetString("type")
			if elderFlag == "" {
				return fmt.Errorf("--elder is required for writes")
			}
			return runAddMemory(newClient(), elderFlag, args[0], memType, os.Stdout)
		},
	}
	addCmd.Flags().String("type", "", "Memory type (left empty, the server classifies the text)")
	memoriesCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			memType, _ := cmd.Flags().GetString("type")
			tag, _ := cmd.Flags().GetString("tag")
			limit, _ := cmd.Flags().GetInt("limit")
			return runListMemories(newClient(), elderFlag, memType, tag, limit, os.Stdout)
		},
	}
	listCmd.Flags().String("type", "", "Filter by memory type")
	listCmd.Flags().String("tag", "", "Filter by tag")
	listCmd.Flags().Int("limit", 50, "Maximum results")
	memoriesCmd.AddCommand(listCmd)
	rootCmd.AddCommand(memoriesCmd)

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question against the recorded memories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(newClient(), elderFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(askCmd)

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Generate the daily summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			return runDailySummary(newClient(), elderFlag, date, os.Stdout)
		},
	}
	summaryCmd.Flags().String("date", "", "Day to summarize (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(summaryCmd)

	linkCmd := &cobra.Command{
		Use:   "link [elder-email]",
		Short: "Link the calling caregiver to an elder by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinkElder(newClient(), args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(linkCmd)

	whoCmd := &cobra.Command{
		Use:   "current-elder",
		Short: "Show which elder the session resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurrentElder(newClient(), elderFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(whoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
