package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-agent/internal/fetch"
)

var fetchJDCmd = &cobra.Command{
	Use:   "fetch-jd <url>",
	Short: "Fetch a job posting and print its description text",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetchJD,
}

var fetchJDBrowser bool

func init() {
	fetchJDCmd.Flags().BoolVar(&fetchJDBrowser, "browser", false, "Render the page in headless Chrome when static HTML has too little text")
	rootCmd.AddCommand(fetchJDCmd)
}

func runFetchJD(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts := fetch.DefaultOptions()
	opts.UseBrowser = fetchJDBrowser

	text, err := fetch.JobDescription(ctx, args[0], opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "platform: %s\n", fetch.DetectPlatform(args[0]))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
