package reports

import (
	"fmt"
	"strings"

	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/config"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func init() {
	// Monetary fields go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	ActiveMemberStoredSnapshot      = "storedSnapshot"
	ActiveMemberDerivedFromPayments = "derivedFromPayments"

	DailyRevenueFromDayPasses = "daypass"
	DailyRevenueFromDues      = "dues"

	// NotInformedLabel groups dues rows whose forma_pgto is NULL/empty
	// instead of silently dropping their revenue from the breakdown.
	NotInformedLabel = "NOT INFORMED"
)

// Options selects between the behavioral forks inherited from earlier
// backend generations. Zero values mean the defaults from config.
type Options struct {
	ActiveMemberSource      string
	DailyRevenueSource      string
	ExcludeUnlabeledMethods bool
}

// OptionsFromEnv reads the deployment's choices from the feature flags.
func OptionsFromEnv() Options {
	return Options{
		ActiveMemberSource:      config.ActiveMemberSource(),
		DailyRevenueSource:      config.DailyRevenueSource(),
		ExcludeUnlabeledMethods: config.ExcludeUnlabeledMethods(),
	}
}

// Engine computes every dashboard aggregation and tabular report. It only
// reads; the store handle is injected at construction and shared safely
// across requests.
type Engine struct {
	db     *gorm.DB
	logger *logrus.Logger
	opts   Options
}

func NewEngine(db *gorm.DB, logger *logrus.Logger, opts Options) *Engine {
	if opts.ActiveMemberSource == "" {
		opts.ActiveMemberSource = ActiveMemberStoredSnapshot
	}
	if opts.DailyRevenueSource == "" {
		opts.DailyRevenueSource = DailyRevenueFromDayPasses
	}
	return &Engine{db: db, logger: logger, opts: opts}
}

// storeErr tags a driver failure so the route layer can map it to a 500
// without leaking retry logic into the engine.
func (e *Engine) storeErr(err error) error {
	return fmt.Errorf("%w: %v", utils.ErrStoreUnavailable, err)
}

// isMissingTableErr detects the optional-stream case: older deployments
// lack clientes_excluidos/frequencia and those sub-queries must degrade to
// empty results rather than fail the whole aggregation.
func isMissingTableErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "error 1146") ||
		strings.Contains(msg, "doesn't exist") ||
		strings.Contains(msg, "does not exist")
}

func (e *Engine) warnMissingTable(funcName string, table string, err error) {
	if e.logger == nil {
		return
	}
	e.logger.WithFields(logrus.Fields{
		"module":   "reports",
		"funcName": funcName,
		"table":    table,
	}).Warn("optional table missing; substituting empty result: " + err.Error())
}
