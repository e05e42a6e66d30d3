// Package export renders indicator submissions as spreadsheet friendly CSV.
package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/indicador"
)

// BOM makes spreadsheet tools detect UTF-8.
const BOM = "\ufeff"

// ContentPrefix marks payload fields that sit outside the expanded list.
const ContentPrefix = "conteudo_"

// Row is one CSV line keyed by column name.
type Row map[string]string

// Source is a submission with the names needed for its common columns.
type Source struct {
	Lancamento domain.Lancamento
	Indicador  domain.IndicadorConfig
	Usuario    string
	Base       string
	Equipe     string
	Location   *time.Location
}

// FlattenLancamento returns one row per sub-item of list payloads, or a
// single row otherwise. Every row starts with the common columns.
func FlattenLancamento(src Source) []Row {
	loc := src.Location
	if loc == nil {
		loc = time.UTC
	}
	base := Row{
		"id":                 src.Lancamento.ID,
		"data_hora_registro": registeredAt(src.Lancamento.CreatedAt, loc),
		"data_referencia":    src.Lancamento.DataReferencia,
		"usuario":            src.Usuario,
		"base":               src.Base,
		"equipe":             src.Equipe,
		"indicador":          src.Indicador.Label(),
		"indicador_tipo":     string(src.Indicador.SchemaType),
	}

	payload := indicador.DecodeLenient(src.Indicador.SchemaType, src.Lancamento.Conteudo)
	flat := indicador.Flatten(payload)

	if flat.ListKey == "" || len(flat.Items) == 0 {
		row := base.clone()
		for k, v := range flat.Fields {
			row[k] = v
		}
		return []Row{row}
	}

	rows := make([]Row, 0, len(flat.Items))
	for _, item := range flat.Items {
		row := base.clone()
		for k, v := range item {
			row[k] = v
		}
		for k, v := range flat.Fields {
			row[ContentPrefix+k] = v
		}
		rows = append(rows, row)
	}
	return rows
}

func registeredAt(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("02/01/2006, 15:04:05")
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Headers returns the sorted union of keys across rows.
func Headers(rows []Row) []string {
	set := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(set))
	for k := range set {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

var clockValue = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// EscapeValue quotes a field when it holds a delimiter, quote or line break,
// or when it looks like a bare clock time that a spreadsheet would reformat.
func EscapeValue(v string) string {
	if strings.ContainsAny(v, ",\"\n\r") || clockValue.MatchString(v) {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// WriteCSV writes the BOM, a header line and one line per row. Nothing but the
// BOM is written for an empty row set. It returns the number of data rows.
func WriteCSV(w io.Writer, rows []Row) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(BOM); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, bw.Flush()
	}

	headers := Headers(rows)
	if err := writeLine(bw, headers); err != nil {
		return 0, err
	}
	values := make([]string, len(headers))
	for _, r := range rows {
		for i, h := range headers {
			values[i] = r[h]
		}
		if err := bw.WriteByte('\n'); err != nil {
			return 0, err
		}
		if err := writeLine(bw, values); err != nil {
			return 0, err
		}
	}
	return len(rows), bw.Flush()
}

func writeLine(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(EscapeValue(f)); err != nil {
			return err
		}
	}
	return nil
}

// Filename returns "<prefix>_DDMMYYYY.csv" for the given day.
func Filename(prefix string, day time.Time) string {
	if prefix == "" {
		prefix = "relatorio"
	}
	return fmt.Sprintf("%s_%s.csv", prefix, day.Format("02012006"))
}
