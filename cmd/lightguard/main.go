// LightGuard Core - exterior lighting control for road vehicles.
//
// This is the main entry point. It wires the control cycle to the vehicle
// bus (MQTT), the fault journal (SQLite), optional telemetry (InfluxDB) and
// the diagnostics API, then ticks until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nerrad567/lightguard-core/internal/api"
	"github.com/nerrad567/lightguard-core/internal/auth"
	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/cycle"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/database"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/logging"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/lightguard-core/internal/journal"
	"github.com/nerrad567/lightguard-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line flags.
type options struct {
	configPath  string
	issueToken  string
	tokenTTL    time.Duration
	showVersion bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("lightguard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.configPath, "config", "", "path to config.yaml (default $LIGHTGUARD_CONFIG or "+defaultConfigPath+")")
	fs.StringVar(&o.issueToken, "issue-token", "", "print an API token for subject:role and exit")
	fs.DurationVar(&o.tokenTTL, "token-ttl", auth.DefaultTokenTTL, "lifetime of a token printed by -issue-token")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return o, fmt.Errorf("parsing flags: %w", err)
	}
	if o.configPath == "" {
		o.configPath = getConfigPath()
	}
	return o, nil
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments without the program name
//   - stdout: Destination for -version and -issue-token output
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "lightguard %s (%s, %s)\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.issueToken != "" {
		return issueToken(cfg, opts.issueToken, opts.tokenTTL, stdout)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting LightGuard Core",
		"version", version,
		"commit", commit,
		"build_date", date,
		"vehicle_id", cfg.Vehicle.ID,
		"config", opts.configPath,
	)

	// Fault journal
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	journalRepo := journal.NewSQLiteRepository(db.DB)
	log.Info("database ready", "path", db.Path())

	// Vehicle bus
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
	mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", mqttClient.ClientID(),
	)

	inbox := cycle.NewInbox()
	if subErr := subscribeInputs(mqttClient, byte(cfg.MQTT.QoS), inbox); subErr != nil {
		return subErr
	}

	checks := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}

	runnerOpts := cycle.Options{
		VehicleID:      cfg.Vehicle.ID,
		Interval:       cfg.TickInterval(),
		JournalBacklog: cfg.Cycle.JournalBacklog,
		CommandTopic:   mqtt.Topics{}.ActuatorCommand(),
		FaultTopic:     mqtt.Topics{}.CoreFault,
		StateTopic:     mqtt.Topics{}.CoreState(),
		Publisher:      mqttClient,
		Journal:        journalRepo,
		Logger:         log.Component("cycle"),
	}

	// Telemetry (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB, cfg.Vehicle.ID)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		runnerOpts.Telemetry = influxClient
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Control cycle
	ctrl, err := control.New(cfg.Control.Lighting(), log.Component("control"))
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}

	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	go hub.Run(ctx)
	runnerOpts.Hub = hub

	runner := cycle.New(ctrl, inbox, runnerOpts)

	// Diagnostics API
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Logger:      log.Component("api"),
		Status:      runner,
		Override:    inbox,
		Faults:      journalRepo,
		Checks:      checks,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete", "cadence_hz", cfg.Cycle.CadenceHz)

	// Blocks until ctx is cancelled; the journal queue is drained before it returns.
	if runErr := runner.Run(ctx); runErr != nil {
		return fmt.Errorf("control cycle: %w", runErr)
	}

	log.Info("LightGuard Core stopped", "journal_dropped", runner.JournalDropped())
	return nil
}

// subscribeInputs routes the perception, ego and manual beam topics into the inbox.
func subscribeInputs(client *mqtt.Client, qos byte, inbox *cycle.Inbox) error {
	topics := mqtt.Topics{}
	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{topics.PerceptionFrame(), inbox.HandleFrame},
		{topics.EgoState(), inbox.HandleEgo},
		{topics.ManualBeam(), inbox.HandleBeam},
	}
	for _, s := range subs {
		if err := client.Subscribe(s.topic, qos, s.handler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", s.topic, err)
		}
	}
	return nil
}

// issueToken prints a signed API token for "subject:role".
func issueToken(cfg *config.Config, subjectRole string, ttl time.Duration, stdout io.Writer) error {
	subject, role, ok := strings.Cut(subjectRole, ":")
	if !ok || subject == "" {
		return errors.New("-issue-token must be subject:role")
	}
	token, err := auth.GenerateToken(subject, auth.Role(role), cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer, ttl)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}

// getConfigPath returns the config file path from environment or default.
func getConfigPath() string {
	if path := os.Getenv("LIGHTGUARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
