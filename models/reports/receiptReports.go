package reports

import (
	"context"
	"sort"

	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/models"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ReceiptRow is the uniform shape every monetary report is normalized into.
// Optional text columns come back as empty strings, never null.
type ReceiptRow struct {
	Data        string          `json:"data"`
	Hora        string          `json:"hora"`
	Cliente     string          `json:"cliente"`
	Valor       decimal.Decimal `json:"valor"`
	Atividade   string          `json:"atividade"`
	FormaPgto   string          `json:"forma_pgto"`
	TipoCliente string          `json:"tipo_cliente"`
	Funcionario string          `json:"funcionario"`
	Origem      string          `json:"origem,omitempty"`
}

// receiptStream describes how one legacy receipt table maps onto ReceiptRow.
// The four streams differ only in these expressions, so a single projector
// serves them all.
type receiptStream struct {
	source        string
	table         string
	clienteExpr   string
	valorExpr     string
	atividadeExpr string
	formaPgtoExpr string
	tipoExpr      string
}

var (
	duesStream = receiptStream{
		source:        "MENSALIDADE",
		table:         "recebimentos_mensalidades",
		clienteExpr:   "COALESCE(nome, '')",
		valorExpr:     "valor",
		atividadeExpr: "COALESCE(atividades, '')",
		formaPgtoExpr: "COALESCE(forma_pgto, '')",
		tipoExpr:      "COALESCE(NULLIF(TRIM(tipo_cliente), ''), 'RENOVAÇÃO')",
	}

	// Sales rows have no stable client identity in the legacy schema; the
	// projector falls back to a constant placeholder instead of failing.
	salesStream = receiptStream{
		source:        "VENDA",
		table:         "recebimentos_vendas",
		clienteExpr:   "COALESCE(NULLIF(TRIM(cliente), ''), 'Cliente')",
		valorExpr:     "valor_total",
		atividadeExpr: "COALESCE(produtos, '')",
		formaPgtoExpr: "COALESCE(forma_pgto, '')",
		tipoExpr:      "'VENDA'",
	}

	// Assessments are unlabeled cash-equivalents: constant activity, no
	// payment method.
	assessmentStream = receiptStream{
		source:        "AVALIAÇÃO",
		table:         "recebimentos_avaliacoes",
		clienteExpr:   "COALESCE(cliente, '')",
		valorExpr:     "valor",
		atividadeExpr: "'AVALIAÇÃO FÍSICA'",
		formaPgtoExpr: "''",
		tipoExpr:      "'AVALIAÇÃO'",
	}

	dayPassStream = receiptStream{
		source:        "DIÁRIA",
		table:         "recebimentos_diarias",
		clienteExpr:   "COALESCE(cliente, '')",
		valorExpr:     "valor",
		atividadeExpr: "'DIÁRIA'",
		formaPgtoExpr: "COALESCE(forma_pgto, '')",
		tipoExpr:      "'DIÁRIA'",
	}
)

func (e *Engine) DuesReport(ctx context.Context, gymIds []int, period *models.Period) ([]*ReceiptRow, error) {
	return e.receiptReport(ctx, duesStream, gymIds, period)
}

func (e *Engine) SalesReport(ctx context.Context, gymIds []int, period *models.Period) ([]*ReceiptRow, error) {
	return e.receiptReport(ctx, salesStream, gymIds, period)
}

func (e *Engine) AssessmentReport(ctx context.Context, gymIds []int, period *models.Period) ([]*ReceiptRow, error) {
	return e.receiptReport(ctx, assessmentStream, gymIds, period)
}

func (e *Engine) DayPassReport(ctx context.Context, gymIds []int, period *models.Period) ([]*ReceiptRow, error) {
	return e.receiptReport(ctx, dayPassStream, gymIds, period)
}

func (e *Engine) receiptReport(ctx context.Context, stream receiptStream, gymIds []int, period *models.Period) ([]*ReceiptRow, error) {
	if len(gymIds) == 0 {
		return nil, utils.ErrInvalidGymSet
	}

	sqlT := `
		SELECT
			DATE_FORMAT(data, '%Y-%m-%d') AS data,
			TIME_FORMAT(hora, '%H:%i:%s') AS hora,
			{{ .cliente }} AS cliente,
			{{ .valor }} AS valor,
			{{ .atividade }} AS atividade,
			{{ .formaPgto }} AS forma_pgto,
			{{ .tipo }} AS tipo_cliente,
			COALESCE(funcionario, '') AS funcionario
		FROM {{ .table }}
		WHERE id_academia IN ?
		{{- if .period }}
		AND data BETWEEN ? AND ?
		{{- end }}
		ORDER BY data DESC, hora DESC`

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"table":     stream.table,
		"cliente":   stream.clienteExpr,
		"valor":     stream.valorExpr,
		"atividade": stream.atividadeExpr,
		"formaPgto": stream.formaPgtoExpr,
		"tipo":      stream.tipoExpr,
		"period":    period != nil,
	})
	if err != nil {
		return nil, err
	}

	args := []interface{}{gymIds}
	if period != nil {
		args = append(args, period.Start, period.End)
	}

	rows := []*ReceiptRow{}
	if err := e.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, e.storeErr(err)
	}
	return rows, nil
}

// UnionReport merges the four monetary streams into one chronological feed
// tagged with origem. Each stream is fetched as its own period-bounded query
// (so the period applies before the merge) and the merge-sort happens here.
func (e *Engine) UnionReport(ctx context.Context, gymIds []int, period *models.Period) ([]*ReceiptRow, error) {
	if len(gymIds) == 0 {
		return nil, utils.ErrInvalidGymSet
	}

	streams := []receiptStream{duesStream, salesStream, assessmentStream, dayPassStream}
	fetched := make([][]*ReceiptRow, len(streams))

	g, gctx := errgroup.WithContext(ctx)
	for i, stream := range streams {
		i, stream := i, stream
		g.Go(func() error {
			rows, err := e.receiptReport(gctx, stream, gymIds, period)
			if err != nil {
				return err
			}
			for _, r := range rows {
				r.Origem = stream.source
			}
			fetched[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeReceiptRows(fetched...), nil
}

// mergeReceiptRows combines already-sorted per-stream slices into one slice
// ordered by (data desc, hora desc). The result is a multiset union: no row
// is dropped or duplicated.
func mergeReceiptRows(streams ...[]*ReceiptRow) []*ReceiptRow {
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	merged := make([]*ReceiptRow, 0, total)
	for _, s := range streams {
		merged = append(merged, s...)
	}
	// data/hora are zero-padded Y-m-d / H:i:s strings, so lexicographic
	// comparison is chronological.
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Data != merged[j].Data {
			return merged[i].Data > merged[j].Data
		}
		return merged[i].Hora > merged[j].Hora
	})
	return merged
}
