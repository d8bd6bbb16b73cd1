package summary

import (
	"reflect"
	"testing"
	"time"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/model"
)

func TestParseSettings(t *testing.T) {
	t.Parallel()

	rows := []model.Row{
		{"Май", "Май Яндекс"},
		{"", ""},
		{"  Июнь  ", ""},
		{"", "Июль Яндекс"},
		{},
	}

	got := ParseSettings(rows)
	want := []Pair{
		{Our: "Май", Yandex: "Май Яндекс"},
		{Our: "Июнь"},
		{Yandex: "Июль Яндекс"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pairs = %+v, want %+v", got, want)
	}
}

func TestPair_ReportName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pair Pair
		want string
	}{
		{Pair{Our: "Май", Yandex: "Май Яндекс"}, "Сводная - Май"},
		{Pair{Yandex: "Июль Яндекс"}, "Сводная - Июль Яндекс"},
		{Pair{Our: "  Июнь "}, "Сводная - Июнь"},
	}
	for _, c := range cases {
		if got := c.pair.ReportName(); got != c.want {
			t.Errorf("ReportName(%+v) = %q, want %q", c.pair, got, c.want)
		}
	}
}

func TestSelectPairs_Wraps(t *testing.T) {
	t.Parallel()

	pairs := []Pair{{Our: "a"}, {Our: "b"}, {Our: "c"}}

	sel, next := SelectPairs(pairs, 2, 2)
	if want := []Pair{{Our: "c"}, {Our: "a"}}; !reflect.DeepEqual(sel, want) {
		t.Fatalf("selected = %+v, want %+v", sel, want)
	}
	if next != 1 {
		t.Fatalf("next = %d, want 1", next)
	}
}

func TestSelectPairs_ZeroMaxSelectsAll(t *testing.T) {
	t.Parallel()

	pairs := []Pair{{Our: "a"}, {Our: "b"}}
	sel, next := SelectPairs(pairs, 1, 0)
	if want := []Pair{{Our: "b"}, {Our: "a"}}; !reflect.DeepEqual(sel, want) {
		t.Fatalf("selected = %+v, want %+v", sel, want)
	}
	if next != 1 {
		t.Fatalf("next = %d, want 1", next)
	}
}

func TestSelectPairs_Empty(t *testing.T) {
	t.Parallel()

	sel, next := SelectPairs(nil, 5, 3)
	if sel != nil || next != 0 {
		t.Fatalf("got (%v, %d), want (nil, 0)", sel, next)
	}
}

func TestSelectPairs_StaleCursorNormalized(t *testing.T) {
	t.Parallel()

	pairs := []Pair{{Our: "a"}, {Our: "b"}}
	sel, next := SelectPairs(pairs, 7, 1)
	if want := []Pair{{Our: "b"}}; !reflect.DeepEqual(sel, want) {
		t.Fatalf("selected = %+v, want %+v", sel, want)
	}
	if next != 0 {
		t.Fatalf("next = %d, want 0", next)
	}
}

func TestWritePolicy_DefaultAppliesToAll(t *testing.T) {
	t.Parallel()

	p := WritePolicy{DefaultInterval: 30 * time.Second}
	iv, ok := p.IntervalFor("Сводная - Любой")
	if !ok || iv != 30*time.Second {
		t.Fatalf("got (%v, %v), want (30s, true)", iv, ok)
	}
}

func TestWritePolicy_HotCold(t *testing.T) {
	t.Parallel()

	p := WritePolicy{
		DefaultInterval: 30 * time.Second,
		HotReport:       "Сводная - Май",
		HotInterval:     30 * time.Second,
		ColdReports:     []string{"Сводная - Апрель", "Сводная - Март"},
		ColdInterval:    24 * time.Hour,
	}

	if iv, ok := p.IntervalFor("сводная - май"); !ok || iv != 30*time.Second {
		t.Fatalf("hot: got (%v, %v)", iv, ok)
	}
	if iv, ok := p.IntervalFor("Сводная - Март"); !ok || iv != 24*time.Hour {
		t.Fatalf("cold: got (%v, %v)", iv, ok)
	}
	if _, ok := p.IntervalFor("Сводная - Февраль"); ok {
		t.Fatal("unlisted report should be skipped")
	}
}
