// Package export re-serializes a normalized view back to CSV for download or
// handoff: semicolon-delimited, CRLF line endings, UTF-8, with a fixed header
// in the vocabulary the source exports use.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"efetivo/internal/query"
	"efetivo/internal/roster"
)

// header is the output column set. Unknown ages and dates serialize as empty
// fields, never as sentinel numbers.
var header = []string{
	"ID", "Nome", "CPF", "Data Nascimento", "Idade",
	"Código Unidade", "Unidade", "Posto/Graduação",
	"Data Início", "Anos Serviço", "Abono Permanência",
}

const dateLayout = "02/01/2006"

// Write serializes the view to w.
func Write(w io.Writer, v query.View) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for i := 0; i < v.Len(); i++ {
		if err := cw.Write(fields(v.At(i))); err != nil {
			return fmt.Errorf("export: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

// WriteFile creates path (truncating any existing file) and serializes the
// view into it.
func WriteFile(path string, v query.View) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, v); err != nil {
		return err
	}
	return f.Close()
}

func fields(r roster.Record) []string {
	age := ""
	if r.HasAge() {
		age = strconv.Itoa(r.Age)
	}
	birth := ""
	if !r.BirthDate.IsZero() {
		birth = r.BirthDate.Format(dateLayout)
	}
	start, years := "", ""
	if r.HasStartDate() {
		start = r.StartDate.Format(dateLayout)
		if r.ServiceYears != roster.ServiceYearsUnknown {
			years = strconv.FormatFloat(r.ServiceYears, 'f', 1, 64)
		}
	}
	bonus := "N"
	if r.ReceivesBonus {
		bonus = "S"
	}
	return []string{
		r.ID, r.Name, r.CPF, birth, age,
		r.WorkUnitCode, r.WorkUnit, r.Rank,
		start, years, bonus,
	}
}
