package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"efetivo/internal/query"
	"efetivo/internal/roster"
)

func sampleView() query.View {
	return query.Filter(roster.NewTable([]roster.Record{
		{
			ID:            "1001",
			Name:          "João Silva",
			CPF:           "12345678900",
			BirthDate:     time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
			Age:           40,
			WorkUnitCode:  "071",
			WorkUnit:      "1º GB",
			Rank:          "Capitão",
			StartDate:     time.Date(2010, 2, 10, 0, 0, 0, 0, time.UTC),
			ServiceYears:  15.3,
			ReceivesBonus: true,
		},
		{
			ID:           "1002",
			Name:         "Maria Souza",
			Age:          roster.AgeUnknown,
			WorkUnit:     "GOST",
			Rank:         "Major",
			ServiceYears: roster.ServiceYearsUnknown,
		},
	}))
}

func TestWriteFormat(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := Write(&b, sampleView()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := b.String()

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CRLF lines, want 3 (header + 2 rows):\n%q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID;Nome;CPF;") {
		t.Errorf("header = %q", lines[0])
	}
	if want := "1001;João Silva;12345678900;15/03/1985;40;071;1º GB;Capitão;10/02/2010;15.3;S"; lines[1] != want {
		t.Errorf("row 1 = %q, want %q", lines[1], want)
	}
	// Unknown age, dates and service years serialize as empty fields.
	if want := "1002;Maria Souza;;;;;GOST;Major;;;N"; lines[2] != want {
		t.Errorf("row 2 = %q, want %q", lines[2], want)
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "efetivo_limpo.csv")
	if err := WriteFile(path, sampleView()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "João Silva") {
		t.Errorf("file does not contain exported row: %q", data)
	}
}
