package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/medmais/sistema-indicadores/internal/compliance"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the compliance rule table",
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "yaml", "output format: json or yaml")
}

func runRules(cmd *cobra.Command, args []string) error {
	rules := compliance.Rules()
	out := cmd.OutOrStdout()
	switch rulesFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rules)
	default:
		return fmt.Errorf("unknown format %q", rulesFormat)
	}
}
