package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-agent/internal/fetch"
	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/refine"
	"github.com/jonathan/career-agent/internal/types"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Rewrite a resume for the target job descriptions",
	Long:  "Rewrites the whole resume as Markdown against the target job descriptions, folding in strength tags and new achievements.",
	RunE:  runRefine,
}

var (
	refineResume       string
	refineJDFiles      []string
	refineJDURLs       []string
	refineStrengths    []string
	refineAchievements string
	refineOutput       string
)

func init() {
	refineCmd.Flags().StringVarP(&refineResume, "resume", "r", "", "Path to the resume (PDF, Markdown or text; - for stdin)")
	refineCmd.Flags().StringSliceVarP(&refineJDFiles, "jd", "j", nil, "Path to a job description file (repeatable)")
	refineCmd.Flags().StringSliceVar(&refineJDURLs, "jd-url", nil, "URL of a job posting to fetch (repeatable)")
	refineCmd.Flags().StringSliceVarP(&refineStrengths, "strength", "s", nil, "Strength tag to emphasize (repeatable)")
	refineCmd.Flags().StringVar(&refineAchievements, "achievements", "", "Free-text achievements to add")
	refineCmd.Flags().StringVarP(&refineOutput, "out", "o", "", "Write the rewritten resume to this file instead of stdout")

	_ = refineCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resumeText, err := readDocument(refineResume, cmd.InOrStdin())
	if err != nil {
		return err
	}
	jds, err := collectJDs(ctx, refineJDFiles, refineJDURLs, &fetch.Options{
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

	content, err := refine.NewService(client, log).Refine(ctx, types.RefineRequest{
		Resume:          resumeText,
		JDs:             jds,
		Strengths:       refineStrengths,
		NewAchievements: refineAchievements,
	})
	if err != nil {
		return fmt.Errorf("refine failed: %w", err)
	}

	if refineOutput == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(refineOutput, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", refineOutput, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote refined resume to %s\n", refineOutput)
	return nil
}
