package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/source"
)

func TestSameHostPort(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"127.0.0.1:8000", "127.0.0.1:8000", true},
		{"localhost:8000", "127.0.0.1:8000", true},
		{"0.0.0.0:8000", "127.0.0.1:8000", true},
		{"127.0.0.1:8000", "127.0.0.1:8001", false},
		{"api.example.com:8000", "127.0.0.1:8000", false},
	}
	for _, tc := range cases {
		if got := sameHostPort(tc.a, tc.b); got != tc.want {
			t.Errorf("sameHostPort(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCheckNotSelfProxy(t *testing.T) {
	if err := checkNotSelfProxy(source.KindHTTP, "http://127.0.0.1:8000", "127.0.0.1:8000"); err == nil {
		t.Error("expected an http source pointing at the daemon to be refused")
	}
	if err := checkNotSelfProxy(source.KindHTTP, "http://10.0.0.5:8000", "127.0.0.1:8000"); err != nil {
		t.Errorf("remote service refused: %v", err)
	}
	if err := checkNotSelfProxy(source.KindSynthetic, "http://127.0.0.1:8000", "127.0.0.1:8000"); err != nil {
		t.Errorf("synthetic source refused: %v", err)
	}
}

func TestDefaultSourceRefusedAsSelfProxy(t *testing.T) {
	cfg := config.DefaultConfig()
	src, err := source.New(cfg, nil)
	if err != nil {
		t.Fatalf("source.New: %v", err)
	}
	if err := checkNotSelfProxy(src.Kind(), config.GetAPIURL(cfg), "127.0.0.1:8000"); err == nil {
		t.Errorf("default %s source at %s was not refused", src.Kind(), config.GetAPIURL(cfg))
	}

	cfg.Source.Kind = source.KindSynthetic
	src, err = source.New(cfg, nil)
	if err != nil {
		t.Fatalf("source.New: %v", err)
	}
	if err := checkNotSelfProxy(src.Kind(), config.GetAPIURL(cfg), "127.0.0.1:8000"); err != nil {
		t.Errorf("synthetic source refused: %v", err)
	}
}

func TestMatchesID(t *testing.T) {
	id := "3f2b9c1e-7a4d-4e51-9b0a-2c8d6e4f1a33"
	if !matchesID(id, id) || !matchesID(id, "3f2b9c1e") {
		t.Error("full id and short prefix should match")
	}
	if matchesID(id, "3f2") {
		t.Error("prefixes under four characters are ambiguous")
	}
	if matchesID(id, "deadbeef") {
		t.Error("unrelated prefix matched")
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", ":9000", "--detach=true"})
	if strings.Join(got, " ") != "daemon --addr :9000" {
		t.Errorf("filterDetachArg = %v", got)
	}
}

func TestSeriesTableColumns(t *testing.T) {
	lo, hi := 90.0, 110.0
	base := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	s := forecast.Series{
		{At: base, Value: 95, Kind: forecast.Historical},
		{At: base.AddDate(0, 1, 0), Value: 98, Kind: forecast.Historical},
		{At: base.AddDate(0, 2, 0), Value: 100, Kind: forecast.Historical},
		{At: base.AddDate(0, 3, 0), Value: 102, Lower: &lo, Upper: &hi, Kind: forecast.Forecasted},
	}

	flagAllRows, flagHistoryRows = false, 2
	defer func() { flagAllRows, flagHistoryRows = false, 6 }()

	tbl := seriesTable(s)
	want := []string{"Month", "Historical Price", "Forecasted Price", "Lower Bound", "Upper Bound"}
	if strings.Join(tbl.Headers, "|") != strings.Join(want, "|") {
		t.Fatalf("headers = %v", tbl.Headers)
	}
	// two historical rows, a separator, one forecast row
	if len(tbl.Rows) != 4 {
		t.Fatalf("rows = %d, want 4: %v", len(tbl.Rows), tbl.Rows)
	}
	if tbl.Rows[2][0] != "---" {
		t.Errorf("missing separator: %v", tbl.Rows[2])
	}
	last := tbl.Rows[3]
	if last[1] != "" || last[2] != "$102" || last[3] != "$90" || last[4] != "$110" {
		t.Errorf("forecast row = %v", last)
	}
	if tbl.Rows[0][3] != "" || tbl.Rows[0][4] != "" {
		t.Errorf("historical row carries bounds: %v", tbl.Rows[0])
	}

	flagAllRows = true
	if got := len(seriesTable(s).Rows); got != 5 {
		t.Errorf("--all rows = %d, want 5", got)
	}
}

func TestPriceBar(t *testing.T) {
	if got := priceBar(50, 100, 10); strings.Count(got, "█") != 5 {
		t.Errorf("priceBar(50, 100) = %q", got)
	}
	if got := priceBar(5, 0, 10); got != "" {
		t.Errorf("priceBar with zero peak = %q", got)
	}
}
