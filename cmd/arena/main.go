package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trettofejr/LumenFi/internal/arena"
	"github.com/trettofejr/LumenFi/internal/confidential"
	"github.com/trettofejr/LumenFi/internal/config"
	cronrunner "github.com/trettofejr/LumenFi/internal/cron"
	"github.com/trettofejr/LumenFi/internal/db"
	"github.com/trettofejr/LumenFi/internal/handler"
	"github.com/trettofejr/LumenFi/internal/ledger"
	"github.com/trettofejr/LumenFi/internal/logger"
	"github.com/trettofejr/LumenFi/internal/oracle"
	"github.com/trettofejr/LumenFi/internal/repository"
	gormrepository "github.com/trettofejr/LumenFi/internal/repository/gorm"
	"github.com/trettofejr/LumenFi/internal/service"
)

func main() {
	cfgPath := os.Getenv("LF_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("LF_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var store repository.ArenaRepository
	var dbConn *db.DB
	if cfg.DB.Enabled {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)

		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
		store = gormrepository.New(dbConn.Gorm)
	} else {
		logger.Info("persistence disabled; audit and history endpoints unavailable")
	}

	entryFee, err := decimal.NewFromString(strings.TrimSpace(cfg.Arena.EntryFeeWei))
	if err != nil {
		logger.Fatal("invalid arena.entry_fee_wei", zap.Error(err))
	}
	if entryFee.LessThan(ledger.MinEntryFeeWei) {
		logger.Fatal("arena.entry_fee_wei below minimum",
			zap.String("configured", entryFee.String()),
			zap.String("minimum", ledger.MinEntryFeeWei.String()),
		)
	}

	priceOracle, err := buildOracle(cfg.Oracle)
	if err != nil {
		logger.Fatal("oracle init failed", zap.Error(err))
	}

	secret := cfg.Confidential.Secret
	if secret == "" {
		logger.Warn("confidential.secret unset; using an ephemeral secret, handles will not survive restarts")
		secret = time.Now().UTC().Format(time.RFC3339Nano)
	}
	vault := confidential.NewLocalService([]byte(secret))

	genesisCtx, cancelGenesis := context.WithTimeout(context.Background(), cfg.Oracle.Timeout)
	engine, err := arena.New(genesisCtx, arena.Params{
		Instance:      cfg.Arena.Instance,
		EntryFee:      entryFee,
		LockDuration:  cfg.Arena.LockDuration,
		RoundDuration: cfg.Arena.RoundDuration,
		RangeBounds:   cfg.Arena.RangeBounds,
	}, priceOracle, vault, store, logger, time.Now().UTC())
	cancelGenesis()
	if err != nil {
		logger.Fatal("arena init failed", zap.Error(err))
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{}
	if dbConn != nil {
		healthHandler.DB = dbConn.Gorm
	}
	healthHandler.Register(router)
	arenaHandler := &handler.ArenaHandler{Engine: engine, Logger: logger}
	arenaHandler.Register(router)
	historyHandler := &handler.HistoryHandler{Repo: store}
	historyHandler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Keeper.Enabled {
		keeper := &service.Keeper{Engine: engine, Vault: vault, Logger: logger}
		if _, err := cronRunner.Add(cfg.Keeper.Spec, func(ctx context.Context) {
			keeper.RunOnce(ctx)
		}); err != nil {
			logger.Warn("cron register keeper failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func buildOracle(cfg config.OracleConfig) (oracle.PriceOracle, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "static":
		value, err := decimal.NewFromString(strings.TrimSpace(cfg.StaticPrice))
		if err != nil {
			return nil, err
		}
		return oracle.NewStatic(value), nil
	default:
		return oracle.NewBinance(cfg.Symbol), nil
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
