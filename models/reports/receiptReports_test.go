package reports

import (
	"testing"

	"github.com/shopspring/decimal"
)

func row(data, hora, origem string) *ReceiptRow {
	return &ReceiptRow{
		Data:   data,
		Hora:   hora,
		Valor:  decimal.New(100, 0),
		Origem: origem,
	}
}

func TestMergeReceiptRows_OrdersByDateThenTimeDescending(t *testing.T) {
	dues := []*ReceiptRow{
		row("2026-08-30", "10:00:00", "MENSALIDADE"),
		row("2026-08-28", "09:00:00", "MENSALIDADE"),
	}
	sales := []*ReceiptRow{
		row("2026-08-30", "18:30:00", "VENDA"),
		row("2026-08-29", "12:00:00", "VENDA"),
	}
	dayPasses := []*ReceiptRow{
		row("2026-08-30", "10:00:00", "DIÁRIA"),
	}

	merged := mergeReceiptRows(dues, sales, dayPasses)

	if len(merged) != 5 {
		t.Fatalf("merge must keep every row, expected 5 got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		prev, cur := merged[i-1], merged[i]
		if prev.Data < cur.Data {
			t.Fatalf("rows out of date order at %d: %s before %s", i, prev.Data, cur.Data)
		}
		if prev.Data == cur.Data && prev.Hora < cur.Hora {
			t.Fatalf("rows out of time order at %d: %s %s before %s %s", i, prev.Data, prev.Hora, cur.Data, cur.Hora)
		}
	}
	if merged[0].Origem != "VENDA" || merged[0].Hora != "18:30:00" {
		t.Fatalf("newest row should lead, got %s %s %s", merged[0].Data, merged[0].Hora, merged[0].Origem)
	}
}

func TestMergeReceiptRows_StableForEqualTimestamps(t *testing.T) {
	// Two rows with identical (data, hora) from different streams: the
	// stream passed first stays first.
	merged := mergeReceiptRows(
		[]*ReceiptRow{row("2026-08-30", "10:00:00", "MENSALIDADE")},
		[]*ReceiptRow{row("2026-08-30", "10:00:00", "DIÁRIA")},
	)
	if merged[0].Origem != "MENSALIDADE" || merged[1].Origem != "DIÁRIA" {
		t.Fatalf("equal-timestamp rows must keep stream order, got %s then %s", merged[0].Origem, merged[1].Origem)
	}
}

func TestMergeReceiptRows_MultisetUnion(t *testing.T) {
	// Identical-looking rows in different streams are distinct receipts
	// and must all survive the merge.
	dup := row("2026-08-30", "10:00:00", "")
	merged := mergeReceiptRows(
		[]*ReceiptRow{dup},
		[]*ReceiptRow{row("2026-08-30", "10:00:00", "")},
	)
	if len(merged) != 2 {
		t.Fatalf("duplicate timestamps must not collapse, expected 2 got %d", len(merged))
	}
}

func TestMergeReceiptRows_EmptyStreams(t *testing.T) {
	if got := mergeReceiptRows(nil, []*ReceiptRow{}, nil); len(got) != 0 {
		t.Fatalf("expected empty merge, got %d rows", len(got))
	}
}

func TestReceiptStreams_CoverTheFourLegacyTables(t *testing.T) {
	streams := []receiptStream{duesStream, salesStream, assessmentStream, dayPassStream}
	tables := map[string]bool{}
	for _, s := range streams {
		if s.source == "" || s.table == "" || s.valorExpr == "" {
			t.Fatalf("stream %+v is underspecified", s)
		}
		tables[s.table] = true
	}
	for _, table := range []string{"recebimentos_mensalidades", "recebimentos_vendas", "recebimentos_avaliacoes", "recebimentos_diarias"} {
		if !tables[table] {
			t.Fatalf("no stream maps table %s", table)
		}
	}
}
