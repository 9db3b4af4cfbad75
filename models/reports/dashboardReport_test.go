package reports

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGrowthPercent(t *testing.T) {
	cases := []struct {
		current  int64
		previous int64
		expected string
	}{
		{120, 100, "20"},
		{100, 120, "-16.7"},
		{100, 100, "0"},
		{101, 3, "3266.7"},
		// A zero previous count is floored to 1, so a dead month still
		// yields a defined percentage.
		{0, 0, "-100"},
		{50, 0, "4900"},
	}
	for _, tc := range cases {
		got := growthPercent(tc.current, tc.previous)
		if got.String() != tc.expected {
			t.Fatalf("growthPercent(%d, %d) expected %s, got %s", tc.current, tc.previous, tc.expected, got.String())
		}
	}
}

func TestGrowthPercent_RoundsToOneDecimal(t *testing.T) {
	got := growthPercent(1, 3)
	if got.Exponent() < -1 {
		t.Fatalf("growthPercent should round to one decimal place, got %s", got.String())
	}
}

func TestDashboardResponse_SerializesDecimalsAsNumbers(t *testing.T) {
	resp := DashboardResponse{
		TotalMembros:         42,
		ReceitaMensal:        decimal.RequireFromString("1234.50"),
		ReceitaDiaria:        decimal.RequireFromString("80"),
		Crescimento:          decimal.RequireFromString("-16.7"),
		ReceitasPorMes:       []*MonthRevenue{},
		ReceitasPorFormaPgto: []*PaymentMethodRevenue{},
		PlanosAtivos:         []*ActivePlan{},
		PagamentosRecentes:   []*RecentPayment{},
		ClientesNovos:        []*ClientEvent{},
		ClientesExcluidos:    []*ClientEvent{},
		NovosClientesPorMes:  []*MonthCount{},
	}
	out, err := json.Marshal(&resp)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"receitaMensal":1234.5`) {
		t.Fatalf("receitaMensal should serialize as a bare number: %s", s)
	}
	if strings.Contains(s, `"crescimento":"`) {
		t.Fatalf("crescimento must not serialize as a string: %s", s)
	}
	if strings.Contains(s, "periodoFiltrado") {
		t.Fatalf("periodoFiltrado should be omitted when unset: %s", s)
	}
	for _, key := range []string{"totalMembros", "receitasPorMes", "receitasPorFormaPgto", "planosAtivos", "pagamentosRecentes", "clientesNovos", "clientesExcluidos", "novosClientesPorMes"} {
		if !strings.Contains(s, `"`+key+`"`) {
			t.Fatalf("missing wire key %q: %s", key, s)
		}
	}
	if strings.Contains(s, `"receitasPorMes":null`) {
		t.Fatalf("empty collections must serialize as [] not null: %s", s)
	}
}

// The consolidated dashboard must report exactly the sum of the per-gym
// figures. Both sums run over the same per-gym partials the store returns,
// so summing each gym's slice separately and summing the combined slice have
// to agree.
func TestConsolidatedTotalsAreSumOfPerGymPartials(t *testing.T) {
	perGym := map[int][]gymTotal{
		1: {{GymID: 1, Total: decimal.RequireFromString("1500.50")}},
		2: {{GymID: 2, Total: decimal.RequireFromString("0.01")}},
		3: {{GymID: 3, Total: decimal.RequireFromString("980")}},
	}
	combined := []gymTotal{}
	singleSum := decimal.Zero
	for _, rows := range perGym {
		combined = append(combined, rows...)
		singleSum = singleSum.Add(sumGymTotals(rows))
	}
	if got := sumGymTotals(combined); !got.Equal(singleSum) {
		t.Fatalf("consolidated revenue %s != sum of per-gym revenues %s", got.String(), singleSum.String())
	}
}

func TestConsolidatedSnapshotIsSumOfStoredCounts(t *testing.T) {
	perGym := map[int][]gymCount{
		1: {{GymID: 1, Total: 120}},
		2: {{GymID: 2, Total: 0}},
		3: {{GymID: 3, Total: 45}},
	}
	combined := []gymCount{}
	singleSum := 0
	for _, rows := range perGym {
		combined = append(combined, rows...)
		singleSum += sumGymCounts(rows)
	}
	if got := sumGymCounts(combined); got != singleSum {
		t.Fatalf("consolidated membros_ativos %d != sum of per-gym snapshots %d", got, singleSum)
	}
	if got := sumGymCounts(nil); got != 0 {
		t.Fatalf("empty partials should sum to 0, got %d", got)
	}
}

func TestPaymentMethodLabelExpr(t *testing.T) {
	def := paymentMethodLabelExpr(false)
	if !strings.Contains(def, NotInformedLabel) {
		t.Fatalf("default label must bucket unlabeled methods under %q: %s", NotInformedLabel, def)
	}
	if !strings.Contains(def, "TRIM(forma_pgto)") {
		t.Fatalf("blank-but-not-null methods must also be bucketed: %s", def)
	}
	if got := paymentMethodLabelExpr(true); got != "forma_pgto" {
		t.Fatalf("exclusion mode should group on the raw column, got %s", got)
	}
}

func TestDuesStreamDefaultsTipoToRenovacao(t *testing.T) {
	if !strings.Contains(duesStream.tipoExpr, "RENOVAÇÃO") {
		t.Fatalf("dues rows without tipo_cliente must default to RENOVAÇÃO: %s", duesStream.tipoExpr)
	}
	if !strings.Contains(duesStream.tipoExpr, "TRIM") {
		t.Fatalf("blank tipo_cliente must also fall back: %s", duesStream.tipoExpr)
	}
}

func TestOptionsFromEnv_Defaults(t *testing.T) {
	t.Setenv("ACTIVE_MEMBER_SOURCE", "")
	t.Setenv("DAILY_REVENUE_SOURCE", "")
	t.Setenv("EXCLUDE_UNLABELED_METHODS", "")

	opts := OptionsFromEnv()
	if opts.ActiveMemberSource != ActiveMemberStoredSnapshot {
		t.Fatalf("default active member source should be the stored snapshot, got %q", opts.ActiveMemberSource)
	}
	if opts.DailyRevenueSource != DailyRevenueFromDayPasses {
		t.Fatalf("default daily revenue source should be day passes, got %q", opts.DailyRevenueSource)
	}
	if opts.ExcludeUnlabeledMethods {
		t.Fatal("unlabeled payment methods should be bucketed by default, not excluded")
	}
}

func TestOptionsFromEnv_Overrides(t *testing.T) {
	t.Setenv("ACTIVE_MEMBER_SOURCE", "derivedFromPayments")
	t.Setenv("DAILY_REVENUE_SOURCE", "dues")
	t.Setenv("EXCLUDE_UNLABELED_METHODS", "true")

	opts := OptionsFromEnv()
	if opts.ActiveMemberSource != ActiveMemberDerivedFromPayments {
		t.Fatalf("expected derived source, got %q", opts.ActiveMemberSource)
	}
	if opts.DailyRevenueSource != DailyRevenueFromDues {
		t.Fatalf("expected dues source, got %q", opts.DailyRevenueSource)
	}
	if !opts.ExcludeUnlabeledMethods {
		t.Fatal("expected unlabeled methods to be excluded")
	}
}
