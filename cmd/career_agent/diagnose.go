package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-agent/internal/diagnostic"
	"github.com/jonathan/career-agent/internal/fetch"
	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/observability"
	"github.com/jonathan/career-agent/internal/types"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose a resume against one or more job descriptions",
	Long:  "Scores a resume against the target job descriptions, lists matched and missing skills and proposes a study plan for the preparation window.",
	RunE:  runDiagnose,
}

var (
	diagnoseResume     string
	diagnoseJDFiles    []string
	diagnoseJDURLs     []string
	diagnosePrepDays   int
	diagnoseDailyHours float64
	diagnoseJSON       bool
)

func init() {
	diagnoseCmd.Flags().StringVarP(&diagnoseResume, "resume", "r", "", "Path to the resume (PDF, Markdown or text; - for stdin)")
	diagnoseCmd.Flags().StringSliceVarP(&diagnoseJDFiles, "jd", "j", nil, "Path to a job description file (repeatable)")
	diagnoseCmd.Flags().StringSliceVar(&diagnoseJDURLs, "jd-url", nil, "URL of a job posting to fetch (repeatable)")
	diagnoseCmd.Flags().IntVar(&diagnosePrepDays, "prep-days", types.DefaultPrepDays, "Days available before the interview")
	diagnoseCmd.Flags().Float64Var(&diagnoseDailyHours, "daily-hours", types.DefaultDailyHours, "Study hours per day")
	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "Print the raw JSON result")

	_ = diagnoseCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resumeText, err := readDocument(diagnoseResume, cmd.InOrStdin())
	if err != nil {
		return err
	}
	jds, err := collectJDs(ctx, diagnoseJDFiles, diagnoseJDURLs, &fetch.Options{
		Timeout:    cfg.Fetch.Timeout,
		UseBrowser: cfg.Fetch.UseBrowser,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, cfg.ModelConfig(), cfg.APIKey(), log)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	result, err := diagnostic.NewService(client, log).Diagnose(ctx, types.DiagnosticRequest{
		Resume:     resumeText,
		JDs:        jds,
		PrepDays:   diagnosePrepDays,
		DailyHours: diagnoseDailyHours,
	})
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	if diagnoseJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintDiagnostic(result)
	return nil
}
