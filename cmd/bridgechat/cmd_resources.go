package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	memoryCmd.AddCommand(memoryListCmd, memoryDeleteCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	evalCmd.AddCommand(evalListCmd)
	rootCmd.AddCommand(memoryCmd, knowledgeCmd, metricsCmd, evalCmd)
}

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Manage stored user memories",
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memories for the configured user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		c, err := newClient(cfg)
		if err != nil {
			return err
		}

		records, err := c.Memory().List(context.Background(), cfg.UserID)
		if err != nil {
			return fmt.Errorf("list memories: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No memories found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMEMORY")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\n", r.MemoryID, r.Memory)
		}
		return w.Flush()
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		c, err := newClient(cfg)
		if err != nil {
			return err
		}
		return c.Memory().Delete(context.Background(), args[0])
	},
}

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect indexed knowledge content",
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		c, err := newClient(cfg)
		if err != nil {
			return err
		}

		docs, err := c.Knowledge().ListContent(context.Background())
		if err != nil {
			return fmt.Errorf("list knowledge content: %w", err)
		}
		if len(docs) == 0 {
			fmt.Println("No content found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSIZE")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", d.ID, d.Name, d.Status, d.SizeBytes)
		}
		return w.Flush()
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show service usage metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		c, err := newClient(cfg)
		if err != nil {
			return err
		}

		snap, err := c.Metrics().Get(context.Background())
		if err != nil {
			return fmt.Errorf("fetch metrics: %w", err)
		}
		fmt.Printf("runs:     %d\nsessions: %d\ntokens:   %d\n",
			snap.TotalRuns, snap.TotalSessions, snap.TotalTokens)
		return nil
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Inspect evaluation runs",
}

var evalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List evaluation runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		c, err := newClient(cfg)
		if err != nil {
			return err
		}

		runs, err := c.Evals().List(context.Background())
		if err != nil {
			return fmt.Errorf("list evaluation runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No evaluation runs found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tSCORE")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", r.ID, r.Name, r.EvalType, r.Score)
		}
		return w.Flush()
	},
}
