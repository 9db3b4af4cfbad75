package config

import (
	"os"
	"strings"
)

// The dashboard has two behavioral forks inherited from earlier generations of
// the PHP/Node backend. Both sides are kept and selected by env so deployments
// can match whichever numbers their operators audited against.

// ActiveMemberSource picks where totalMembros comes from.
//
// - "storedSnapshot" (default): academia.membros_ativos, maintained by the
//   ingestion jobs. Counts members even if their dues have not posted yet
//   this month.
// - "derivedFromPayments": COUNT(DISTINCT id_original) over this month's dues,
//   the legacy derivation.
//
// Set via env: ACTIVE_MEMBER_SOURCE=derivedFromPayments
func ActiveMemberSource() string {
	v := strings.TrimSpace(os.Getenv("ACTIVE_MEMBER_SOURCE"))
	if strings.EqualFold(v, "derivedFromPayments") {
		return "derivedFromPayments"
	}
	return "storedSnapshot"
}

// DailyRevenueSource picks which stream feeds receitaDiaria.
//
// - "daypass" (default): recebimentos_diarias, matching /api/receita-diaria
//   in the legacy backend.
// - "dues": recebimentos_mensalidades posted today.
//
// Set via env: DAILY_REVENUE_SOURCE=dues
func DailyRevenueSource() string {
	v := strings.TrimSpace(os.Getenv("DAILY_REVENUE_SOURCE"))
	if strings.EqualFold(v, "dues") {
		return "dues"
	}
	return "daypass"
}

// ExcludeUnlabeledMethods restores the legacy behavior of dropping dues rows
// with a NULL/empty forma_pgto from the payment-method grouping instead of
// reporting them under "NOT INFORMED".
//
// Set via env: EXCLUDE_UNLABELED_METHODS=true
func ExcludeUnlabeledMethods() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("EXCLUDE_UNLABELED_METHODS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// AuthRequired gates the report routes behind the login JWT. Off by default
// because the legacy frontend calls them unauthenticated.
//
// Set via env: AUTH_REQUIRED=true
func AuthRequired() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_REQUIRED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
