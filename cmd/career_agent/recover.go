package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-agent/internal/llm"
)

var recoverCmd = &cobra.Command{
	Use:   "recover <file>",
	Short: "Extract JSON from raw model output",
	Long:  "Runs raw model output through the JSON recovery ladder and prints the recovered value. Use - to read from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}

func runRecover(cmd *cobra.Command, args []string) error {
	raw, err := readRaw(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	value, err := llm.Recover(raw)
	if err != nil {
		return fmt.Errorf("no JSON could be recovered: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}
