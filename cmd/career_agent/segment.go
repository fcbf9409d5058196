package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-agent/internal/observability"
	"github.com/jonathan/career-agent/internal/resume"
)

var segmentCmd = &cobra.Command{
	Use:   "segment <resume>",
	Short: "Show how a resume splits into sections",
	Long:  "Normalizes a resume to Markdown and prints the sections recognized from its headings. Use - to read from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSegment,
}

var (
	segmentJSON      bool
	segmentNormalize bool
)

func init() {
	segmentCmd.Flags().BoolVar(&segmentJSON, "json", false, "Print sections as JSON")
	segmentCmd.Flags().BoolVar(&segmentNormalize, "print", false, "Print the normalized document instead of the outline")
	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	text, err := readDocument(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc := resume.Normalize(text)

	out := cmd.OutOrStdout()
	switch {
	case segmentNormalize:
		_, err = out.Write([]byte(doc + "\n"))
		return err
	case segmentJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resume.Segment(doc))
	default:
		observability.NewPrinter(out).PrintSections(resume.Segment(doc))
		return nil
	}
}
