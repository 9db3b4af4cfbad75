package reports

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/config"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/models"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
	"github.com/sirupsen/logrus"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func (e *Engine) logSlowReport(ctx context.Context, name string, started time.Time, gymIds []int) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() || e.logger == nil {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	e.logger.WithFields(logrus.Fields{
		"report":         name,
		"duration_ms":    d.Milliseconds(),
		"gyms":           utils.IntsToCSV(gymIds),
		"correlation_id": cid,
	}).Warn("slow report")
}

func dashboardCacheKey(gymIds []int, period *models.Period) string {
	key := "dashboard:" + utils.IntsToCSV(gymIds)
	if period != nil {
		key += ":" + period.StartString() + ".." + period.EndString()
	}
	return key
}

// cachedDashboard fronts the consolidated aggregation with the report cache.
// The refill takes a best-effort redis lock so a burst of identical requests
// does not stampede the store; if the lock cannot be obtained the request
// just computes anyway.
func (e *Engine) cachedDashboard(ctx context.Context, gymIds []int, period *models.Period) (*DashboardResponse, error) {
	if !reportCacheEnabled() {
		return e.dashboard(ctx, gymIds, period)
	}

	key := dashboardCacheKey(gymIds, period)
	var cached DashboardResponse
	if hit, err := config.GetRedisObject(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:"+key, 10*time.Second, nil)
		if err == nil {
			defer func() { _ = lock.Release(ctx) }()
			// Someone may have filled the cache while we waited.
			if hit, err := config.GetRedisObject(ctx, key, &cached); err == nil && hit {
				return &cached, nil
			}
		} else if err != redislock.ErrNotObtained && e.logger != nil {
			e.logger.Warn("dashboard cache lock: " + err.Error())
		}
	}

	started := time.Now()
	resp, err := e.dashboard(ctx, gymIds, period)
	if err != nil {
		return nil, err
	}
	e.logSlowReport(ctx, "consolidatedDashboard", started, gymIds)

	if err := config.SetRedisObject(ctx, key, resp, reportCacheTTL()); err != nil && e.logger != nil {
		e.logger.Warn("dashboard cache set: " + err.Error())
	}
	return resp, nil
}
