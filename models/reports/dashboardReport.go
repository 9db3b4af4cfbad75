package reports

import (
	"context"

	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/models"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type MonthRevenue struct {
	Ano     int             `json:"-"`
	MesNum  int             `json:"-"`
	Mes     string          `json:"mes"`
	Receita decimal.Decimal `json:"receita"`
	Membros int             `json:"membros"`
}

type PaymentMethodRevenue struct {
	Nome       string          `json:"nome"`
	Valor      decimal.Decimal `json:"valor"`
	Quantidade int             `json:"quantidade"`
}

type ActivePlan struct {
	Plano    string          `json:"plano"`
	Clientes int             `json:"clientes"`
	Receita  decimal.Decimal `json:"receita"`
}

type RecentPayment struct {
	ID        int             `json:"id"`
	Nome      string          `json:"nome"`
	Valor     decimal.Decimal `json:"valor"`
	FormaPgto string          `json:"forma_pgto"`
	Data      string          `json:"data"`
	Hora      string          `json:"hora"`
	Tipo      string          `json:"tipo"`
}

type ClientEvent struct {
	IdOriginal int    `json:"id_original"`
	Nome       string `json:"nome"`
	Atividade  string `json:"atividade"`
	Data       string `json:"data"`
	Hora       string `json:"hora"`
}

type MonthCount struct {
	Ano        int    `json:"-"`
	MesNum     int    `json:"-"`
	Mes        string `json:"mes"`
	Quantidade int    `json:"quantidade"`
}

type PeriodEcho struct {
	DataInicio string `json:"datainicio"`
	DataFim    string `json:"datafim"`
}

// DashboardResponse keeps the legacy wire names; the route layer serializes
// it unchanged.
type DashboardResponse struct {
	TotalMembros         int                     `json:"totalMembros"`
	ReceitaMensal        decimal.Decimal         `json:"receitaMensal"`
	ReceitaDiaria        decimal.Decimal         `json:"receitaDiaria"`
	Crescimento          decimal.Decimal         `json:"crescimento"`
	ReceitasPorMes       []*MonthRevenue         `json:"receitasPorMes"`
	ReceitasPorFormaPgto []*PaymentMethodRevenue `json:"receitasPorFormaPgto"`
	PlanosAtivos         []*ActivePlan           `json:"planosAtivos"`
	PagamentosRecentes   []*RecentPayment        `json:"pagamentosRecentes"`
	ClientesNovos        []*ClientEvent          `json:"clientesNovos"`
	ClientesExcluidos    []*ClientEvent          `json:"clientesExcluidos"`
	NovosClientesPorMes  []*MonthCount           `json:"novosClientesPorMes"`
	PeriodoFiltrado      *PeriodEcho             `json:"periodoFiltrado,omitempty"`
}

// Dashboard computes the metric set for one gym, optionally period-bounded.
func (e *Engine) Dashboard(ctx context.Context, gymId int, period *models.Period) (*DashboardResponse, error) {
	if gymId <= 0 {
		return nil, utils.ErrInvalidGymSet
	}
	return e.dashboard(ctx, []int{gymId}, period)
}

// ConsolidatedDashboard computes the same metric set across a gym set. Every
// grouped aggregate groups once over the combined record set, and the recent
// feed is a global top-20, so the totals match summing per-gym dashboards.
func (e *Engine) ConsolidatedDashboard(ctx context.Context, gymIds []int, period *models.Period) (*DashboardResponse, error) {
	if len(gymIds) == 0 {
		return nil, utils.ErrInvalidGymSet
	}
	for _, id := range gymIds {
		if id <= 0 {
			return nil, utils.ErrInvalidGymSet
		}
	}
	return e.cachedDashboard(ctx, gymIds, period)
}

// dashboard is the single parameterized aggregator behind both scopes.
// The sub-queries are independent reads, so they fan out concurrently and
// join before the response is assembled; the first store failure cancels the
// rest and fails the whole call.
func (e *Engine) dashboard(ctx context.Context, gymIds []int, period *models.Period) (*DashboardResponse, error) {
	revFrom, revTo := utils.GetThisMonthRange()
	monthsFrom, monthsTo := utils.GetTrailingMonthsRange(4)
	if period != nil {
		revFrom, revTo = period.Start, period.End
		monthsFrom, monthsTo = period.Start, period.End
	}
	newByMonthFrom, newByMonthTo := utils.GetTrailingMonthsRange(6)

	resp := &DashboardResponse{
		ReceitasPorMes:       []*MonthRevenue{},
		ReceitasPorFormaPgto: []*PaymentMethodRevenue{},
		PlanosAtivos:         []*ActivePlan{},
		PagamentosRecentes:   []*RecentPayment{},
		ClientesNovos:        []*ClientEvent{},
		ClientesExcluidos:    []*ClientEvent{},
		NovosClientesPorMes:  []*MonthCount{},
	}
	if period != nil {
		resp.PeriodoFiltrado = &PeriodEcho{DataInicio: period.StartString(), DataFim: period.EndString()}
	}

	var currentCount, previousCount int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := e.activeMembers(gctx, gymIds, period)
		if err != nil {
			return err
		}
		resp.TotalMembros = n
		return nil
	})

	g.Go(func() error {
		total, err := e.duesRevenue(gctx, gymIds, revFrom, revTo)
		if err != nil {
			return err
		}
		resp.ReceitaMensal = total
		return nil
	})

	g.Go(func() error {
		total, err := e.DailyRevenue(gctx, gymIds)
		if err != nil {
			return err
		}
		resp.ReceitaDiaria = total
		return nil
	})

	g.Go(func() error {
		var err error
		currentCount, err = e.distinctDuesClients(gctx, gymIds, revFrom, revTo)
		return err
	})

	g.Go(func() error {
		prevFrom, prevTo := utils.GetPreviousMonthRange()
		var err error
		previousCount, err = e.distinctDuesClients(gctx, gymIds, prevFrom, prevTo)
		return err
	})

	g.Go(func() error {
		rows, err := e.revenueByMonth(gctx, gymIds, monthsFrom, monthsTo)
		if err != nil {
			return err
		}
		resp.ReceitasPorMes = rows
		return nil
	})

	g.Go(func() error {
		rows, err := e.revenueByPaymentMethod(gctx, gymIds, revFrom, revTo)
		if err != nil {
			return err
		}
		resp.ReceitasPorFormaPgto = rows
		return nil
	})

	g.Go(func() error {
		rows, err := e.activePlans(gctx, gymIds, revFrom, revTo)
		if err != nil {
			return err
		}
		resp.PlanosAtivos = rows
		return nil
	})

	g.Go(func() error {
		rows, err := e.recentPayments(gctx, gymIds, period)
		if err != nil {
			return err
		}
		resp.PagamentosRecentes = rows
		return nil
	})

	g.Go(func() error {
		rows, err := e.clientEvents(gctx, "clientes_novos", gymIds, period)
		if err != nil {
			return err
		}
		resp.ClientesNovos = rows
		return nil
	})

	g.Go(func() error {
		rows, err := e.clientEvents(gctx, "clientes_excluidos", gymIds, period)
		if err != nil {
			return err
		}
		resp.ClientesExcluidos = rows
		return nil
	})

	g.Go(func() error {
		rows, err := e.newClientsByMonth(gctx, gymIds, newByMonthFrom, newByMonthTo)
		if err != nil {
			return err
		}
		resp.NovosClientesPorMes = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Crescimento = growthPercent(currentCount, previousCount)
	return resp, nil
}

// gymCount / gymTotal are per-gym partials. The store groups per gym and the
// consolidation happens here, so a multi-gym total is the sum of the
// single-gym ones by construction.
type gymCount struct {
	GymID int
	Total int
}

type gymTotal struct {
	GymID int
	Total decimal.Decimal
}

func sumGymCounts(rows []gymCount) int {
	total := 0
	for _, r := range rows {
		total += r.Total
	}
	return total
}

func sumGymTotals(rows []gymTotal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Total)
	}
	return total
}

// activeMembers reads the stored snapshot by default; the legacy derivation
// counts distinct dues-paying clients in the window instead. The two disagree
// when a member's dues have not posted yet.
func (e *Engine) activeMembers(ctx context.Context, gymIds []int, period *models.Period) (int, error) {
	if e.opts.ActiveMemberSource == ActiveMemberDerivedFromPayments {
		from, to := utils.GetThisMonthRange()
		if period != nil {
			from, to = period.Start, period.End
		}
		n, err := e.distinctDuesClients(ctx, gymIds, from, to)
		return int(n), err
	}

	rows := []gymCount{}
	err := e.db.WithContext(ctx).Raw(`
		SELECT id AS gym_id, COALESCE(membros_ativos, 0) AS total
		FROM academia
		WHERE id IN ?`, gymIds).Scan(&rows).Error
	if err != nil {
		return 0, e.storeErr(err)
	}
	return sumGymCounts(rows), nil
}

func (e *Engine) duesRevenue(ctx context.Context, gymIds []int, from, to interface{}) (decimal.Decimal, error) {
	rows := []gymTotal{}
	err := e.db.WithContext(ctx).Raw(`
		SELECT id_academia AS gym_id, COALESCE(SUM(valor), 0) AS total
		FROM recebimentos_mensalidades
		WHERE id_academia IN ?
		AND data BETWEEN ? AND ?
		GROUP BY id_academia`, gymIds, from, to).Scan(&rows).Error
	if err != nil {
		return decimal.Zero, e.storeErr(err)
	}
	return sumGymTotals(rows), nil
}

func (e *Engine) distinctDuesClients(ctx context.Context, gymIds []int, from, to interface{}) (int64, error) {
	var result struct{ Total int64 }
	err := e.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT id_original) AS total
		FROM recebimentos_mensalidades
		WHERE id_academia IN ?
		AND data BETWEEN ? AND ?`, gymIds, from, to).Scan(&result).Error
	if err != nil {
		return 0, e.storeErr(err)
	}
	return result.Total, nil
}

// DailyRevenue sums today's receipts from the configured source stream
// (day passes by default, matching the legacy /api/receita-diaria).
func (e *Engine) DailyRevenue(ctx context.Context, gymIds []int) (decimal.Decimal, error) {
	if len(gymIds) == 0 {
		return decimal.Zero, utils.ErrInvalidGymSet
	}

	table := "recebimentos_diarias"
	if e.opts.DailyRevenueSource == DailyRevenueFromDues {
		table = "recebimentos_mensalidades"
	}
	from, to := utils.GetTodayRange()

	var result struct{ Total decimal.Decimal }
	err := e.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(valor), 0) AS total
		FROM `+table+`
		WHERE id_academia IN ?
		AND data BETWEEN ? AND ?`, gymIds, from, to).Scan(&result).Error
	if err != nil {
		return decimal.Zero, e.storeErr(err)
	}
	return result.Total, nil
}

func (e *Engine) revenueByMonth(ctx context.Context, gymIds []int, from, to interface{}) ([]*MonthRevenue, error) {
	rows := []*MonthRevenue{}
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			YEAR(data) AS ano,
			MONTH(data) AS mes_num,
			DATE_FORMAT(data, '%b') AS mes,
			SUM(valor) AS receita,
			COUNT(DISTINCT id_original) AS membros
		FROM recebimentos_mensalidades
		WHERE id_academia IN ?
		AND data BETWEEN ? AND ?
		GROUP BY YEAR(data), MONTH(data), DATE_FORMAT(data, '%b')
		ORDER BY ano ASC, mes_num ASC`, gymIds, from, to).Scan(&rows).Error
	if err != nil {
		return nil, e.storeErr(err)
	}
	return rows, nil
}

// paymentMethodLabelExpr picks the grouping key for the payment-method
// breakdown. Default buckets NULL/blank methods under NotInformedLabel;
// exclusion mode groups on the raw column and a WHERE clause drops the
// unlabeled rows entirely.
func paymentMethodLabelExpr(exclude bool) string {
	if exclude {
		return "forma_pgto"
	}
	return "COALESCE(NULLIF(TRIM(forma_pgto), ''), '" + NotInformedLabel + "')"
}

func (e *Engine) revenueByPaymentMethod(ctx context.Context, gymIds []int, from, to interface{}) ([]*PaymentMethodRevenue, error) {
	sqlT := `
		SELECT
			{{ .label }} AS nome,
			SUM(valor) AS valor,
			COUNT(*) AS quantidade
		FROM recebimentos_mensalidades
		WHERE id_academia IN ?
		AND data BETWEEN ? AND ?
		{{- if .exclude }}
		AND forma_pgto IS NOT NULL AND forma_pgto != ''
		{{- end }}
		GROUP BY nome
		ORDER BY valor DESC`

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"label":   paymentMethodLabelExpr(e.opts.ExcludeUnlabeledMethods),
		"exclude": e.opts.ExcludeUnlabeledMethods,
	})
	if err != nil {
		return nil, err
	}

	rows := []*PaymentMethodRevenue{}
	if err := e.db.WithContext(ctx).Raw(sql, gymIds, from, to).Scan(&rows).Error; err != nil {
		return nil, e.storeErr(err)
	}
	return rows, nil
}

func (e *Engine) activePlans(ctx context.Context, gymIds []int, from, to interface{}) ([]*ActivePlan, error) {
	rows := []*ActivePlan{}
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			atividades AS plano,
			COUNT(DISTINCT id_original) AS clientes,
			SUM(valor) AS receita
		FROM recebimentos_mensalidades
		WHERE id_academia IN ?
		AND data BETWEEN ? AND ?
		AND atividades IS NOT NULL AND atividades != ''
		GROUP BY atividades
		ORDER BY receita DESC`, gymIds, from, to).Scan(&rows).Error
	if err != nil {
		return nil, e.storeErr(err)
	}
	return rows, nil
}

// recentPayments is a global top-20 across the gym set by (data, hora)
// descending, not top-20 per gym.
func (e *Engine) recentPayments(ctx context.Context, gymIds []int, period *models.Period) ([]*RecentPayment, error) {
	sqlT := `
		SELECT
			id,
			nome,
			valor,
			COALESCE(forma_pgto, '') AS forma_pgto,
			DATE_FORMAT(data, '%Y-%m-%d') AS data,
			TIME_FORMAT(hora, '%H:%i:%s') AS hora,
			COALESCE(NULLIF(TRIM(tipo_cliente), ''), 'RENOVAÇÃO') AS tipo
		FROM recebimentos_mensalidades
		WHERE id_academia IN ?
		{{- if .period }}
		AND data BETWEEN ? AND ?
		{{- end }}
		ORDER BY data DESC, hora DESC
		LIMIT 20`

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{"period": period != nil})
	if err != nil {
		return nil, err
	}
	args := []interface{}{gymIds}
	if period != nil {
		args = append(args, period.Start, period.End)
	}

	rows := []*RecentPayment{}
	if err := e.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, e.storeErr(err)
	}
	return rows, nil
}

// NewClientsFeed lists the latest sign-ups for a gym set.
func (e *Engine) NewClientsFeed(ctx context.Context, gymIds []int, period *models.Period) ([]*ClientEvent, error) {
	if len(gymIds) == 0 {
		return nil, utils.ErrInvalidGymSet
	}
	return e.clientEvents(ctx, "clientes_novos", gymIds, period)
}

// RemovedClientsFeed lists the latest cancellations for a gym set.
func (e *Engine) RemovedClientsFeed(ctx context.Context, gymIds []int, period *models.Period) ([]*ClientEvent, error) {
	if len(gymIds) == 0 {
		return nil, utils.ErrInvalidGymSet
	}
	return e.clientEvents(ctx, "clientes_excluidos", gymIds, period)
}

// clientEvents serves both lifecycle feeds; the table is one of
// clientes_novos / clientes_excluidos and may be absent in older
// deployments, which degrades to an empty feed.
func (e *Engine) clientEvents(ctx context.Context, table string, gymIds []int, period *models.Period) ([]*ClientEvent, error) {
	sqlT := `
		SELECT
			id_original,
			nome,
			COALESCE(atividades, '') AS atividade,
			DATE_FORMAT(data, '%Y-%m-%d') AS data,
			TIME_FORMAT(hora, '%H:%i:%s') AS hora
		FROM ` + table + `
		WHERE id_academia IN ?
		{{- if .period }}
		AND data BETWEEN ? AND ?
		{{- end }}
		ORDER BY data DESC, hora DESC
		LIMIT 10`

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{"period": period != nil})
	if err != nil {
		return nil, err
	}
	args := []interface{}{gymIds}
	if period != nil {
		args = append(args, period.Start, period.End)
	}

	rows := []*ClientEvent{}
	if err := e.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		if isMissingTableErr(err) {
			e.warnMissingTable("clientEvents", table, err)
			return []*ClientEvent{}, nil
		}
		return nil, e.storeErr(err)
	}
	return rows, nil
}

func (e *Engine) newClientsByMonth(ctx context.Context, gymIds []int, from, to interface{}) ([]*MonthCount, error) {
	rows := []*MonthCount{}
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			YEAR(data) AS ano,
			MONTH(data) AS mes_num,
			DATE_FORMAT(data, '%b') AS mes,
			COUNT(*) AS quantidade
		FROM clientes_novos
		WHERE id_academia IN ?
		AND data BETWEEN ? AND ?
		GROUP BY YEAR(data), MONTH(data), DATE_FORMAT(data, '%b')
		ORDER BY ano ASC, mes_num ASC`, gymIds, from, to).Scan(&rows).Error
	if err != nil {
		if isMissingTableErr(err) {
			e.warnMissingTable("newClientsByMonth", "clientes_novos", err)
			return []*MonthCount{}, nil
		}
		return nil, e.storeErr(err)
	}
	return rows, nil
}

// growthPercent is (current-previous)/previous*100 rounded to one decimal
// place. A zero previous count is floored to 1: the legacy backends did this
// to avoid a division error, and the quirk is kept as an explicit rule.
func growthPercent(currentCount, previousCount int64) decimal.Decimal {
	if previousCount == 0 {
		previousCount = 1
	}
	return decimal.NewFromInt(currentCount - previousCount).
		Div(decimal.NewFromInt(previousCount)).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}
