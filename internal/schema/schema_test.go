package schema

import (
	"errors"
	"testing"
)

func TestFold(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"Descrição da Unidade de Trabalho", "descricao da unidade de trabalho"},
		{"IDADE", "idade"},
		{"  Graduação ", "graduacao"},
		{"ascii", "ascii"},
	}
	for _, tc := range cases {
		if got := Fold(tc.in); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveAliases(t *testing.T) {
	t.Parallel()
	aliases := DefaultAliases()
	cases := []struct {
		header string
		want   Field
	}{
		{"ID", FieldID},
		{"Nome", FieldName},
		{"CPF", FieldCPF},
		{"Idade", FieldAge},
		{"Data Nascimento", FieldBirthDate},
		{"Cargo", FieldRank},
		{"Posto/Graduação", FieldRank},
		{"Código da Unidade de Trabalho", FieldWorkUnitCode},
		{"Descrição da Unidade de Trabalho", FieldWorkUnit},
		{"Unidade Trabalho", FieldWorkUnit},
		{"LOTACAO", FieldWorkUnit},
		{"Data Início", FieldStartDate},
		{"Data de Admissão", FieldStartDate},
		{"Recebe Abono Permanência", FieldBonus},
	}
	for _, tc := range cases {
		got, ok := aliases.Resolve(tc.header)
		if !ok {
			t.Errorf("Resolve(%q): no match, want %q", tc.header, tc.want)
			continue
		}
		if got != tc.want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

// "unidade" ends with the substring "idade"; the work-unit aliases must win
// over the age alias for unit columns.
func TestResolveUnidadeDoesNotBecomeAge(t *testing.T) {
	t.Parallel()
	aliases := DefaultAliases()
	got, ok := aliases.Resolve("Descrição da Unidade de Trabalho")
	if !ok || got != FieldWorkUnit {
		t.Fatalf("Resolve(unit header) = %q ok=%v, want %q", got, ok, FieldWorkUnit)
	}
}

func TestResolveUnknownHeader(t *testing.T) {
	t.Parallel()
	if f, ok := DefaultAliases().Resolve("RG"); ok {
		t.Fatalf("Resolve(RG) = %q, want no match", f)
	}
}

func TestMapColumns(t *testing.T) {
	t.Parallel()
	headers := []string{"ID", "Nome", "RG", "CPF", "Data Nascimento", "Idade",
		"Código da Unidade de Trabalho", "Descrição da Unidade de Trabalho",
		"Cargo", "Data Início", "Recebe Abono Permanência"}

	cols, err := MapColumns(headers, DefaultAliases())
	if err != nil {
		t.Fatalf("MapColumns: %v", err)
	}
	if i := cols.Index[FieldName]; i != 1 {
		t.Errorf("name index = %d, want 1", i)
	}
	if i := cols.Index[FieldWorkUnit]; i != 7 {
		t.Errorf("work unit index = %d, want 7", i)
	}
	if i := cols.Index[FieldRank]; i != 8 {
		t.Errorf("rank index = %d, want 8", i)
	}
	if cols.Has(FieldBonus) != true {
		t.Error("bonus column not detected")
	}

	row := []string{"1", "Fulano", "12345", "123.456.789-00", "01/01/1990", "35",
		"77", "1º Grupamento de Bombeiros", "Cabo", "10/02/2010", "N"}
	if got := cols.Value(row, FieldRank); got != "Cabo" {
		t.Errorf("Value(rank) = %q, want Cabo", got)
	}
	if got := cols.Value(row, FieldCPF); got != "123.456.789-00" {
		t.Errorf("Value(cpf) = %q", got)
	}
}

func TestMapColumnsMissingRequired(t *testing.T) {
	t.Parallel()
	headers := []string{"ID", "Nome", "RG", "CPF", "Idade"}
	_, err := MapColumns(headers, DefaultAliases())
	if err == nil {
		t.Fatal("want MissingColumnError, got nil")
	}
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingColumnError", err)
	}
	if missing.Field != FieldWorkUnit {
		t.Fatalf("missing field = %q, want %q", missing.Field, FieldWorkUnit)
	}
}

func TestMapColumnsShortRow(t *testing.T) {
	t.Parallel()
	headers := []string{"Nome", "Descrição da Unidade de Trabalho", "Cargo"}
	cols, err := MapColumns(headers, DefaultAliases())
	if err != nil {
		t.Fatalf("MapColumns: %v", err)
	}
	if got := cols.Value([]string{"só nome"}, FieldRank); got != "" {
		t.Fatalf("Value on short row = %q, want empty", got)
	}
}
