package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thermostat_triggers/internal/fritzbox"
	"thermostat_triggers/internal/handlers"
	"thermostat_triggers/internal/logger"
	"thermostat_triggers/internal/notify"
	"thermostat_triggers/internal/repository"
	"thermostat_triggers/internal/repository/db"
	"thermostat_triggers/internal/server"
	"thermostat_triggers/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const cycleTimeout = 2 * time.Minute

func main() {
	runOnce := flag.Bool("once", false, "run a single sync cycle and exit (for external cron hosting)")
	syncOnly := flag.Bool("sync-only", false, "reconcile devices only, never execute triggers")
	verbose := flag.Bool("verbose", false, "log every sync decision")
	flag.Parse()

	// load config.yml / environment
	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
		os.Exit(1)
	}

	// init logger
	log := logger.Get(viper.GetString("log.level"))
	defer log.Flush()

	cfg := service.Config{
		OffTemperature:      viper.GetFloat64("temperature.off"),
		FallbackTemperature: viper.GetFloat64("temperature.fallback"),
		IntervalMinutes:     viper.GetInt("sync.interval_minutes"),
		SyncOnly:            viper.GetBool("sync.sync_only") || *syncOnly,
		Verbose:             viper.GetBool("sync.verbose") || *verbose,
		SigningKey:          viper.GetString("auth.signing_key"),
	}

	// open DB
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(database)
	hub := fritzbox.NewAHAClient(
		viper.GetString("fritzbox.host"),
		viper.GetString("fritzbox.user"),
		viper.GetString("fritzbox.password"),
		viper.GetDuration("fritzbox.timeout"),
	)
	notifier := notify.NewPushoverNotifier(
		viper.GetString("pushover.api_token"),
		viper.GetString("pushover.user_key"),
	)
	services := service.NewService(repos, hub, notifier, log, cfg)
	apiHandler := handlers.NewHandler(services, log)

	// one-shot mode: the host's cron drives the interval, we exit non-zero
	// on a failed cycle so the run shows up as failed there.
	if *runOnce {
		if err := runCycle(services, log); err != nil {
			os.Exit(1)
		}
		return
	}

	// periodic sync job
	scheduler := startScheduler(services, cfg, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(scheduler, srv, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", "app.db")
	viper.SetDefault("sync.interval_minutes", 1)
	viper.SetDefault("temperature.off", 126.5)
	viper.SetDefault("temperature.fallback", 0.0)
	viper.SetDefault("fritzbox.timeout", 10*time.Second)

	// FRITZBOX_HOST, PUSHOVER_API_TOKEN etc. override file values
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		// env-only deployments run without a config file
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// runCycle executes one sync cycle with a bounded timeout.
func runCycle(services *service.Service, log *logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	if err := services.Sync.RunCycle(ctx, time.Now()); err != nil {
		log.Errorw("sync cycle failed", "err", err)
		return err
	}
	return nil
}

// cronLogAdapter lets cron report skipped runs through the zap logger.
type cronLogAdapter struct {
	log *logger.Logger
}

func (a cronLogAdapter) Printf(format string, args ...interface{}) {
	a.log.Infof(format, args...)
}

// startScheduler runs the sync cycle every interval via cron. A tick that
// lands while the previous cycle is still talking to the hub is skipped
// instead of stacking a second cycle on top of it.
func startScheduler(services *service.Service, cfg service.Config, log *logger.Logger) *cron.Cron {
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.PrintfLogger(cronLogAdapter{log: log})),
	))
	spec := fmt.Sprintf("@every %dm", cfg.IntervalMinutes)
	if _, err := scheduler.AddFunc(spec, func() {
		_ = runCycle(services, log)
	}); err != nil {
		log.Fatalw("failed to schedule sync job", "err", err, "spec", spec)
	}
	scheduler.Start()
	return scheduler
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(scheduler *cron.Cron, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	// let a running sync cycle finish before stopping
	<-scheduler.Stop().Done()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
