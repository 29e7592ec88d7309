package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/rundown-core/internal/api"
	"github.com/nerrad567/rundown-core/internal/asrun"
	"github.com/nerrad567/rundown-core/internal/automation"
	"github.com/nerrad567/rundown-core/internal/infrastructure/config"
	"github.com/nerrad567/rundown-core/internal/infrastructure/database"
	"github.com/nerrad567/rundown-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/rundown-core/internal/infrastructure/logging"
	"github.com/nerrad567/rundown-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/rundown-core/internal/rundown"

	_ "github.com/nerrad567/rundown-core/migrations"
)

// defaultConfigPath is used when neither --config nor RUNDOWN_CONFIG is set.
const defaultConfigPath = "configs/config.yaml"

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a playout session with the API, MQTT and telemetry attached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (default $"+config.EnvConfigPath+" or "+defaultConfigPath+")")
	return cmd
}

// loadConfig resolves the config path from the flag, the environment, then
// the default location. With no file anywhere the built-in defaults apply.
func loadConfig(flagPath string) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			return config.Default()
		}
		path = defaultConfigPath
	}
	return config.Load(path)
}

// serve wires every component and blocks until ctx is cancelled or one of
// them fails.
func serve(ctx context.Context, cfg *config.Config) error { //nolint:gocognit,gocyclo // startup wiring
	log := logging.New(cfg.Logging, version)
	log.Info("starting rundown core",
		"version", version,
		"commit", commit,
		"station", cfg.Station.ID,
	)

	// Database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path, "migrations_applied", applied)

	shows := rundown.NewSQLiteRepository(db.DB)
	asRun := asrun.NewSQLiteRepository(db.DB)

	var source rundown.Source
	switch cfg.Rundown.Source {
	case config.SourceDatabase:
		source = rundown.RepositorySource{Repo: shows, ShowID: cfg.Rundown.ShowID}
	default:
		source = rundown.FileSource{Path: cfg.Rundown.Path}
	}

	checks := map[string]api.HealthChecker{"database": db}

	dispatchCfg := automation.DispatcherConfig{
		Recorder:     asRun,
		CommandTopic: cfg.CommandTopic,
		StateTopic:   mqtt.Topics{}.State(),
		QoS:          byte(cfg.MQTT.QoS), //nolint:gosec // validated 0-2
		QueueSize:    cfg.Playout.DispatchQueue,
		Logger:       log.Component("dispatch"),
	}

	// MQTT is optional; the session runs without actuators when disabled.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttLog := log.Component("mqtt")
		mqttClient.SetLogger(mqttLog)
		mqttClient.SetOnConnect(func() { mqttLog.Info("MQTT connected") })
		mqttClient.SetOnDisconnect(func(err error) { mqttLog.Warn("MQTT disconnected", "error", err) })
		log.Info("MQTT connected", "broker", cfg.MQTT.Broker.Host, "port", cfg.MQTT.Broker.Port)

		dispatchCfg.MQTT = mqttClient
		checks["mqtt"] = mqttClient
	}

	// InfluxDB is optional.
	influxClient, err := influxdb.Connect(cfg.InfluxDB, cfg.Station.ID)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		// Telemetry never blocks playout.
		log.Warn("InfluxDB unavailable, continuing without telemetry", "error", err)
	default:
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxLog := log.Component("influxdb")
		influxClient.SetOnError(func(err error) { influxLog.Warn("telemetry write failed", "error", err) })
		dispatchCfg.Telemetry = influxClient
		checks["influxdb"] = influxClient
	}

	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	dispatchCfg.Hub = hub
	dispatcher := automation.NewDispatcher(dispatchCfg)

	runner := automation.NewRunner(automation.RunnerConfig{
		Source:       source,
		TickInterval: cfg.GetTickInterval(),
		Sink:         dispatcher,
		Logger:       log.Component("session"),
	})

	if mqttClient != nil {
		surfaceLog := log.Component("surface")
		if err := mqttClient.Subscribe(cfg.Playout.ControlTopic, byte(cfg.MQTT.QoS), //nolint:gosec // validated 0-2
			automation.SurfaceHandler(ctx, runner, surfaceLog)); err != nil {
			return fmt.Errorf("subscribing to control topic: %w", err)
		}
		log.Info("control surfaces subscribed", "topic", cfg.Playout.ControlTopic)
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log.Component("api"),
		Runner:   runner,
		Shows:    shows,
		AsRun:    asRun,
		Hub:      hub,
		Checks:   checks,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })

	if cfg.Rundown.Source == config.SourceFile && cfg.Rundown.Watch {
		watcher := rundown.NewWatcher(cfg.Rundown.Path, func(show *rundown.Show) {
			if err := runner.SetRundown(gctx, show); err != nil {
				log.Warn("applying reloaded rundown", "show_id", show.ID, "error", err)
			}
		})
		watcher.SetLogger(log.Component("watcher"))
		watcher.SetDebounce(cfg.GetWatchDebounce())
		g.Go(func() error { return watcher.Run(gctx) })
	}

	log.Info("rundown core started",
		"source", cfg.Rundown.Source,
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("shutdown complete")
	return nil
}
