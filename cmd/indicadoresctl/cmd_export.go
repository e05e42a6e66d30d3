package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

var (
	exportFrom      string
	exportTo        string
	exportBase      string
	exportEquipe    string
	exportIndicador string
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write submissions in a date range to a CSV file",
	Long: `Write submissions in a date range to a CSV file.

Dates use YYYY-MM-DD. Ranges longer than the configured maximum are clamped.
--indicador takes a schema type such as controle_trocas. Without --out the
file is written to the current directory under the default export name;
use --out - for stdout.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "first day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "last day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportBase, "base", "", "base id")
	exportCmd.Flags().StringVar(&exportEquipe, "equipe", "", "equipe id")
	exportCmd.Flags().StringVar(&exportIndicador, "indicador", "", "schema type")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	filter := domain.LancamentoFilter{
		DataInicio: exportFrom,
		DataFim:    exportTo,
		BaseID:     exportBase,
		EquipeID:   exportEquipe,
	}
	if exportIndicador != "" {
		ind, err := a.Reference.IndicadorBySchemaType(ctx, domain.SchemaType(exportIndicador))
		if err != nil {
			return err
		}
		filter.IndicadorID = ind.ID
	}

	var w io.Writer
	path := exportOut
	switch path {
	case "-":
		w = cmd.OutOrStdout()
	default:
		if path == "" {
			path = a.Export.Filename()
		}
		f, err := os.Create(filepath.Clean(path))
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	res, err := a.Export.Export(ctx, operator(), filter, w)
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d row(s) from %s to %s written to %s\n", res.Rows, res.Range.Start, res.Range.End, path)
	}
	return nil
}
