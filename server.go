package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/config"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/middlewares"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/models"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/models/reports"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const defaultPort = "3001"

var tracer = otel.Tracer("melfitness-backend")

// engine is assigned once the database connection is up; until then the
// readiness gate keeps traffic away from the handlers that use it.
var engine *reports.Engine

type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
}

type loginRequest struct {
	Cpf   string `json:"cpf" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

type gymWithDashboard struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
	*reports.DashboardResponse
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": utils.ProcessValidationErrors(err)})
			return
		}

		ctx := c.Request.Context()
		owner, err := models.AuthenticateOwner(ctx, config.GetDB(), req.Cpf, req.Senha)
		if err != nil {
			if errors.Is(err, utils.ErrAuthenticationFailed) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "CPF ou senha incorretos"})
				return
			}
			config.LogError(logger, "server.go", "loginHandler", "AuthenticateOwner", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao fazer login"})
			return
		}

		gyms, err := models.GymsByOwner(ctx, config.GetDB(), owner.ID)
		if err != nil {
			config.LogError(logger, "server.go", "loginHandler", "GymsByOwner", owner.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao fazer login"})
			return
		}

		// One unfiltered dashboard per gym, fetched concurrently. The order
		// of the response follows the gym list.
		enriched := make([]*gymWithDashboard, len(gyms))
		g, gctx := errgroup.WithContext(ctx)
		for i, gym := range gyms {
			i, gym := i, gym
			g.Go(func() error {
				data, err := engine.Dashboard(gctx, gym.ID, nil)
				if err != nil {
					return err
				}
				enriched[i] = &gymWithDashboard{ID: gym.ID, Nome: gym.Nome, DashboardResponse: data}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			config.LogError(logger, "server.go", "loginHandler", "Dashboard enrichment", owner.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao fazer login"})
			return
		}

		token, err := utils.JwtGenerate(owner.ID, owner.Nome)
		if err != nil {
			config.LogError(logger, "server.go", "loginHandler", "JwtGenerate", owner.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao fazer login"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":        owner.ID,
			"nome":      owner.Nome,
			"cpf":       owner.CPF,
			"token":     token,
			"academias": enriched,
		})
	}
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses. The
// message keeps the legacy Portuguese "erro" key the frontends read.
func writeEngineError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrInvalidPeriod), errors.Is(err, utils.ErrInvalidGymSet):
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
	case errors.Is(err, utils.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"erro": fallback})
	default:
		config.LogError(config.GetLogger(), "server.go", "writeEngineError", fallback, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": fallback})
	}
}

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "dashboard")
		defer span.End()

		gymId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "id de academia inválido"})
			return
		}

		data, err := engine.Dashboard(ctx, gymId, nil)
		if err != nil {
			writeEngineError(c, err, "Erro ao buscar dados do dashboard")
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func filteredDashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "dashboard-filtrado")
		defer span.End()

		gymId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "id de academia inválido"})
			return
		}

		period, err := models.RequirePeriod(c.Query("datainicio"), c.Query("datafim"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "datainicio e datafim são obrigatórios"})
			return
		}

		data, err := engine.Dashboard(ctx, gymId, period)
		if err != nil {
			writeEngineError(c, err, "Erro ao buscar dados do dashboard")
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func consolidatedDashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "dashboard-consolidado")
		defer span.End()

		gymIds, err := utils.ParseGymIds(c.Query("academias"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "academias deve ser uma lista de ids"})
			return
		}

		period, err := models.NewPeriod(c.Query("datainicio"), c.Query("datafim"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
			return
		}

		data, err := engine.ConsolidatedDashboard(ctx, gymIds, period)
		if err != nil {
			writeEngineError(c, err, "Erro ao buscar dados do dashboard")
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func clientFeedHandler(feed func(context.Context, []int, *models.Period) ([]*reports.ClientEvent, error), fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		gymIds, err := utils.ParseGymIds(c.Param("academiaid"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "id de academia inválido"})
			return
		}

		rows, err := feed(c.Request.Context(), gymIds, nil)
		if err != nil {
			writeEngineError(c, err, fallback)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func dailyRevenueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		gymIds, err := utils.ParseGymIds(c.Param("academiaid"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "id de academia inválido"})
			return
		}

		total, err := engine.DailyRevenue(c.Request.Context(), gymIds)
		if err != nil {
			writeEngineError(c, err, "Erro ao buscar receita diária")
			return
		}
		c.JSON(http.StatusOK, gin.H{"receitaDiaria": total})
	}
}

type receiptReportFn func(context.Context, []int, *models.Period) ([]*reports.ReceiptRow, error)

func receiptReportArgs(c *gin.Context) ([]int, *models.Period, bool) {
	gymIds, err := utils.ParseGymIds(c.Param("academiaid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "id de academia inválido"})
		return nil, nil, false
	}
	period, err := models.NewPeriod(c.Query("datainicio"), c.Query("datafim"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return nil, nil, false
	}
	return gymIds, period, true
}

func receiptReportHandler(report receiptReportFn, fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		gymIds, period, ok := receiptReportArgs(c)
		if !ok {
			return
		}
		rows, err := report(c.Request.Context(), gymIds, period)
		if err != nil {
			writeEngineError(c, err, fallback)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func receiptExportHandler(report receiptReportFn, filename string, fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		gymIds, period, ok := receiptReportArgs(c)
		if !ok {
			return
		}
		rows, err := report(c.Request.Context(), gymIds, period)
		if err != nil {
			writeEngineError(c, err, fallback)
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))
		if err := reports.WriteReceiptWorkbook(c.Writer, rows); err != nil {
			config.LogError(config.GetLogger(), "server.go", "receiptExportHandler", filename, nil, err)
		}
	}
}

func attendanceReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		gymIds, period, ok := receiptReportArgs(c)
		if !ok {
			return
		}
		rows, err := engine.AttendanceReport(c.Request.Context(), gymIds, period)
		if err != nil {
			writeEngineError(c, err, "Erro ao buscar frequência")
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func attendanceExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		gymIds, period, ok := receiptReportArgs(c)
		if !ok {
			return
		}
		rows, err := engine.AttendanceReport(c.Request.Context(), gymIds, period)
		if err != nil {
			writeEngineError(c, err, "Erro ao buscar frequência")
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=frequencia.xlsx")
		if err := reports.WriteAttendanceWorkbook(c.Writer, rows); err != nil {
			config.LogError(config.GetLogger(), "server.go", "attendanceExportHandler", "frequencia", nil, err)
		}
	}
}

func testHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var result struct {
			Result int `json:"result"`
		}
		err := config.GetDB().WithContext(c.Request.Context()).
			Raw("SELECT 1 + 1 AS result").Scan(&result).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":   "ERROR",
				"database": "Erro na conexão",
				"error":    err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "OK",
			"database": "Conectado",
			"result":   result.Result,
		})
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before the database is up; until dependencies
	// are ready the app endpoints answer 503.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || engine == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production the origin allowlist comes from CORS_ALLOWED_ORIGINS;
	// anywhere else allow all for developer convenience.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/api/login", loginHandler())
	r.GET("/api/academia/:id/dashboard", dashboardHandler())
	r.GET("/api/academia/:id/dashboard-filtrado", filteredDashboardHandler())
	r.GET("/api/consolidado/dashboard", consolidatedDashboardHandler())
	r.GET("/api/clientes-novos/:academiaid", clientFeedHandler(
		func(ctx context.Context, ids []int, p *models.Period) ([]*reports.ClientEvent, error) {
			return engine.NewClientsFeed(ctx, ids, p)
		}, "Erro ao buscar clientes novos"))
	r.GET("/api/clientes-excluidos/:academiaid", clientFeedHandler(
		func(ctx context.Context, ids []int, p *models.Period) ([]*reports.ClientEvent, error) {
			return engine.RemovedClientsFeed(ctx, ids, p)
		}, "Erro ao buscar clientes excluídos"))
	r.GET("/api/receita-diaria/:academiaid", dailyRevenueHandler())

	report := func(fn func(*reports.Engine, context.Context, []int, *models.Period) ([]*reports.ReceiptRow, error)) receiptReportFn {
		return func(ctx context.Context, ids []int, p *models.Period) ([]*reports.ReceiptRow, error) {
			return fn(engine, ctx, ids, p)
		}
	}
	dues := report((*reports.Engine).DuesReport)
	sales := report((*reports.Engine).SalesReport)
	assessments := report((*reports.Engine).AssessmentReport)
	dayPasses := report((*reports.Engine).DayPassReport)
	union := report((*reports.Engine).UnionReport)

	r.GET("/api/relatorio/mensalidades/:academiaid", receiptReportHandler(dues, "Erro ao buscar mensalidades"))
	r.GET("/api/relatorio/vendas/:academiaid", receiptReportHandler(sales, "Erro ao buscar vendas"))
	r.GET("/api/relatorio/avaliacoes/:academiaid", receiptReportHandler(assessments, "Erro ao buscar avaliações"))
	r.GET("/api/relatorio/diarias/:academiaid", receiptReportHandler(dayPasses, "Erro ao buscar diárias"))
	r.GET("/api/relatorio/totais/:academiaid", receiptReportHandler(union, "Erro ao buscar totais"))
	r.GET("/api/relatorio/frequencia/:academiaid", attendanceReportHandler())

	r.GET("/api/relatorio/mensalidades/:academiaid/export", receiptExportHandler(dues, "mensalidades", "Erro ao buscar mensalidades"))
	r.GET("/api/relatorio/vendas/:academiaid/export", receiptExportHandler(sales, "vendas", "Erro ao buscar vendas"))
	r.GET("/api/relatorio/avaliacoes/:academiaid/export", receiptExportHandler(assessments, "avaliacoes", "Erro ao buscar avaliações"))
	r.GET("/api/relatorio/diarias/:academiaid/export", receiptExportHandler(dayPasses, "diarias", "Erro ao buscar diárias"))
	r.GET("/api/relatorio/totais/:academiaid/export", receiptExportHandler(union, "totais", "Erro ao buscar totais"))
	r.GET("/api/relatorio/frequencia/:academiaid/export", attendanceExportHandler())

	r.GET("/api/test", testHandler())
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	db := config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can run DDL that blocks tables; allow disabling it on
	// startup and running migrations as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Error("AutoMigrate failed: " + err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	engine = reports.NewEngine(db, logger, reports.OptionsFromEnv())

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("API disponível em http://localhost:", port, "/api/test")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs only requests that attached errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RateLimitMiddleware is IP based: first hit creates the counter with the
// window TTL, later hits increment it.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
