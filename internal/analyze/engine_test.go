package analyze

import (
	"testing"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/model"
)

func header() model.Row {
	return model.Row{"Менеджер", "ОПФ", "Договор", "Акцепт", "Метки"}
}

func emptyRow() model.Row {
	return model.Row{"", "", "", "", ""}
}

// asStats converts one 13-column result row back into named counters for
// readable assertions.
type counters struct {
	manager  string
	total    int
	ip       int
	too      int
	contract int
	accept   int
	ratio    float64
	nibSale  int
	nib      int
	zero     int
	empty    int
	other    int
	red      int
}

func asCounters(t *testing.T, row []any) counters {
	t.Helper()
	if len(row) != model.ReportColumns {
		t.Fatalf("result row has %d columns, want %d: %v", len(row), model.ReportColumns, row)
	}
	return counters{
		manager:  row[0].(string),
		total:    row[1].(int),
		ip:       row[2].(int),
		too:      row[3].(int),
		contract: row[4].(int),
		accept:   row[5].(int),
		ratio:    row[6].(float64),
		nibSale:  row[7].(int),
		nib:      row[8].(int),
		zero:     row[9].(int),
		empty:    row[10].(int),
		other:    row[11].(int),
		red:      row[12].(int),
	}
}

func TestEngine_NormalRow(t *testing.T) {
	t.Parallel()

	e := NewEngine(5)
	result := e.Analyze([]model.Row{
		header(),
		{"Иванов", "ТОО Ромашка", "договор №5", "оплата прошла", "nib"},
	})

	if len(result) != 1 {
		t.Fatalf("expected 1 result row, got %d", len(result))
	}
	c := asCounters(t, result[0])
	if c.manager != "Иванов" {
		t.Fatalf("manager = %q", c.manager)
	}
	if c.total != 1 || c.too != 1 || c.contract != 1 || c.accept != 1 || c.nib != 1 {
		t.Fatalf("unexpected counters: %+v", c)
	}
	if c.ip != 0 || c.red != 0 {
		t.Fatalf("unexpected ip/red: %+v", c)
	}
	if c.ratio != 1.0 {
		t.Fatalf("ratio = %v", c.ratio)
	}
}

func TestEngine_RedZoneAfterGap(t *testing.T) {
	t.Parallel()

	rows := []model.Row{
		header(),
		{"Иванов", "ТОО X", "договор", "оплата прошла", "nib"},
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, emptyRow())
	}
	rows = append(rows, model.Row{"Петров", "ТОО Y", "договор", "оплата", "nib"})

	result := NewEngine(5).Analyze(rows)
	if len(result) != 2 {
		t.Fatalf("expected 2 managers, got %d", len(result))
	}

	ivanov := asCounters(t, result[0])
	petrov := asCounters(t, result[1])
	if ivanov.manager != "Иванов" || petrov.manager != "Петров" {
		t.Fatalf("unexpected order: %q %q", ivanov.manager, petrov.manager)
	}
	if ivanov.total != 1 || ivanov.red != 0 {
		t.Fatalf("ivanov: %+v", ivanov)
	}
	// Everything after the gap lands in red only.
	if petrov.total != 0 || petrov.red != 1 {
		t.Fatalf("petrov: %+v", petrov)
	}
}

func TestEngine_RedZoneIsTerminal(t *testing.T) {
	t.Parallel()

	rows := []model.Row{header()}
	for i := 0; i < 3; i++ {
		rows = append(rows, emptyRow())
	}
	// Gap threshold 3 reached; non-empty rows below must not leave the zone.
	rows = append(rows,
		model.Row{"Петров", "ТОО", "договор", "оплата", ""},
		model.Row{"Петров", "ТОО", "договор", "оплата", ""},
		emptyRow(),
		model.Row{"Сидоров", "ИП С", "договор", "оплата", ""},
	)

	result := NewEngine(3).Analyze(rows)
	for _, row := range result {
		c := asCounters(t, row)
		if c.total != 0 {
			t.Fatalf("%s escaped the red zone: %+v", c.manager, c)
		}
	}
}

func TestEngine_GapCounterResetsBeforeThreshold(t *testing.T) {
	t.Parallel()

	rows := []model.Row{
		header(),
		emptyRow(), emptyRow(), emptyRow(), emptyRow(),
		{"Иванов", "ТОО", "договор", "оплата", ""},
		emptyRow(), emptyRow(), emptyRow(), emptyRow(),
		{"Петров", "ТОО", "договор", "оплата", ""},
	}

	result := NewEngine(5).Analyze(rows)
	for _, row := range result {
		c := asCounters(t, row)
		if c.total != 1 || c.red != 0 {
			t.Fatalf("%s should be in the normal zone: %+v", c.manager, c)
		}
	}
}

func TestEngine_TagBucketsPartition(t *testing.T) {
	t.Parallel()

	rows := []model.Row{
		header(),
		{"Иванов", "", "", "", "NIB_SALE_2024"},
		{"Иванов", "", "", "", "nib"},
		{"Иванов", "", "", "", "вот nib тут"},
		{"Иванов", "", "", "", "0"},
		{"Иванов", "", "", "", "0.0"},
		{"Иванов", "", "", "", ""},
		{"Иванов", "", "", "", "прочее"},
	}

	result := NewEngine(5).Analyze(rows)
	c := asCounters(t, result[0])
	if c.total != 7 {
		t.Fatalf("total = %d", c.total)
	}
	if c.nibSale != 1 || c.nib != 2 || c.zero != 2 || c.empty != 1 || c.other != 1 {
		t.Fatalf("buckets: %+v", c)
	}
	if got := c.nibSale + c.nib + c.zero + c.empty + c.other; got != c.total {
		t.Fatalf("buckets don't partition rows: %d != %d", got, c.total)
	}
}

func TestEngine_ContractNegatives(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cell string
		want int
	}{
		{"договор №12", 1},
		{"есть", 1},
		{"", 0},
		{"нет", 0},
		{"0", 0},
		{"-", 0},
		{"—", 0}, // em-dash sentinel
	}

	for _, tc := range cases {
		result := NewEngine(5).Analyze([]model.Row{
			header(),
			{"Иванов", "", tc.cell, "", ""},
		})
		c := asCounters(t, result[0])
		if c.contract != tc.want {
			t.Fatalf("contract cell %q: got %d want %d", tc.cell, c.contract, tc.want)
		}
	}
}

func TestEngine_AcceptRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cell string
		want int
	}{
		{"оплата прошла", 1},
		{"да", 1},
		{"х", 0},          // single rune
		{"нет", 0},
		{"отказ клиента", 0},
		{"ошибка банка", 0},
	}

	for _, tc := range cases {
		result := NewEngine(5).Analyze([]model.Row{
			header(),
			{"Иванов", "", "", tc.cell, ""},
		})
		c := asCounters(t, result[0])
		if c.accept != tc.want {
			t.Fatalf("accept cell %q: got %d want %d", tc.cell, c.accept, tc.want)
		}
	}
}

func TestEngine_LegalFormFlagsIndependent(t *testing.T) {
	t.Parallel()

	// Both forms appear in the row text: both flags count.
	result := NewEngine(5).Analyze([]model.Row{
		header(),
		{"Иванов", `ИП "Ромашка"`, "", "", ""},
		{"Иванов", "ТОО Астра", "", "", ""},
		{"Иванов", "ИП и ТОО вместе", "", "", ""},
	})

	c := asCounters(t, result[0])
	if c.total != 3 {
		t.Fatalf("total = %d", c.total)
	}
	if c.ip != 2 || c.too != 2 {
		t.Fatalf("ip=%d too=%d, want 2/2", c.ip, c.too)
	}
}

func TestEngine_RedMarkerAdditive(t *testing.T) {
	t.Parallel()

	result := NewEngine(5).Analyze([]model.Row{
		header(),
		{"Иванов", "ТОО", "договор", "оплата", "nib", "красная зона"},
	})

	c := asCounters(t, result[0])
	// A marked row still counts as a normal row; red is an extra signal.
	if c.total != 1 || c.red != 1 {
		t.Fatalf("total=%d red=%d, want 1/1", c.total, c.red)
	}
}

func TestEngine_AcceptRatio(t *testing.T) {
	t.Parallel()

	result := NewEngine(5).Analyze([]model.Row{
		header(),
		{"Иванов", "", "", "оплата", ""},
		{"Иванов", "", "", "нет", ""},
		{"Иванов", "", "", "", ""},
		{"Иванов", "", "", "оплата", ""},
	})

	c := asCounters(t, result[0])
	if c.ratio != 0.5 {
		t.Fatalf("ratio = %v, want 0.5", c.ratio)
	}
}

func TestEngine_HeaderEchoSkipped(t *testing.T) {
	t.Parallel()

	result := NewEngine(5).Analyze([]model.Row{
		header(),
		{"Менеджер", "ОПФ", "Договор", "Акцепт", "Метки"},
		{"Иванов", "", "", "", ""},
	})

	if len(result) != 1 {
		t.Fatalf("expected 1 manager, got %d", len(result))
	}
}

func TestEngine_ShortRowsTolerated(t *testing.T) {
	t.Parallel()

	result := NewEngine(5).Analyze([]model.Row{
		header(),
		{"Иванов"}, // trailing cells absent entirely
	})

	c := asCounters(t, result[0])
	if c.total != 1 || c.empty != 1 {
		t.Fatalf("short row: %+v", c)
	}
}

func TestEngine_EmptySheetDiagnostic(t *testing.T) {
	t.Parallel()

	result := NewEngine(5).Analyze([]model.Row{header()})
	if len(result) != 1 || len(result[0]) != 1 || result[0][0] != DiagEmptySheet {
		t.Fatalf("unexpected diagnostic: %v", result)
	}
}

func TestEngine_NoManagerColumnDiagnostic(t *testing.T) {
	t.Parallel()

	result := NewEngine(5).Analyze([]model.Row{
		{"Колонка А", "Колонка Б"},
		{"x", "y"},
	})
	if len(result) != 1 || len(result[0]) != 1 || result[0][0] != DiagNoManagerColumn {
		t.Fatalf("unexpected diagnostic: %v", result)
	}
}

func TestEngine_SortedByManager(t *testing.T) {
	t.Parallel()

	result := NewEngine(5).Analyze([]model.Row{
		header(),
		{"Яшин", "", "", "", ""},
		{"Абаев", "", "", "", ""},
		{"Мусин", "", "", "", ""},
	})

	want := []string{"Абаев", "Мусин", "Яшин"}
	for i, row := range result {
		if row[0].(string) != want[i] {
			t.Fatalf("row %d: got %q want %q", i, row[0], want[i])
		}
	}
}
