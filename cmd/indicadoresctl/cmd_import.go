package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	importFile string
	importBase string
)

var importCmd = &cobra.Command{
	Use:   "import-colaboradores",
	Short: "Load a roster CSV into a base",
	Long: `Load a roster CSV into a base.

The file needs a "nome" column; "ativo" is optional and defaults to true.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file")
	importCmd.Flags().StringVar(&importBase, "base", "", "base id")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importFile == "" || importBase == "" {
		return errors.New("--file and --base are required")
	}
	data, err := os.ReadFile(importFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.Reference.ImportColaboradoresCSV(ctx, operator(), importBase, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d colaborador(es) imported\n", len(items))
	return nil
}
