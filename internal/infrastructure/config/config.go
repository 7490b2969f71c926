package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// Config is the root configuration structure for LightGuard Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Vehicle   VehicleConfig   `yaml:"vehicle"`
	Control   ControlConfig   `yaml:"control"`
	Cycle     CycleConfig     `yaml:"cycle"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// VehicleConfig identifies the vehicle this core is installed in.
type VehicleConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// ControlConfig contains the control-cycle tuning. Durations are written
// as Go duration strings ("250ms", "30s").
type ControlConfig struct {
	DetectionRange float64 `yaml:"detection_range_m"`
	SafeDistance   float64 `yaml:"safe_distance_m"`

	BlinkingFrequency float64       `yaml:"blinking_frequency_hz"`
	HornPulseMin      time.Duration `yaml:"horn_pulse_min"`
	HornPulseMax      time.Duration `yaml:"horn_pulse_max"`

	TurnSignal TurnSignalConfig `yaml:"turn_signal"`
	Safety     SafetyConfig     `yaml:"safety"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Overtaking OvertakingConfig `yaml:"overtaking"`
	Indicator  IndicatorConfig  `yaml:"indicator"`
	FailSafe   FailSafeConfig   `yaml:"failsafe"`
}

// TurnSignalConfig contains the per-channel thresholds and debounce windows.
// A zero steering or yaw threshold disables that channel.
type TurnSignalConfig struct {
	LateralVelocityThreshold float64       `yaml:"lateral_velocity_threshold_mps"`
	LateralVelocityDeadzone  float64       `yaml:"lateral_velocity_deadzone_mps"`
	SteeringAngleThreshold   float64       `yaml:"steering_angle_threshold_deg"`
	SteeringAngleDeadzone    float64       `yaml:"steering_angle_deadzone_deg"`
	YawRateThreshold         float64       `yaml:"yaw_rate_threshold_dps"`
	YawRateDeadzone          float64       `yaml:"yaw_rate_deadzone_dps"`
	ActivationDebounce       time.Duration `yaml:"activation_debounce"`
	DeactivationDebounce     time.Duration `yaml:"deactivation_debounce"`
}

// SafetyConfig contains the stall and blocking-vehicle parameters.
type SafetyConfig struct {
	StallRPMThreshold   float64       `yaml:"stall_rpm_threshold"`
	StallRPMHysteresis  float64       `yaml:"stall_rpm_hysteresis"`
	StallSpeedThreshold float64       `yaml:"stall_speed_threshold_mps"`
	StallDebounce       time.Duration `yaml:"stall_debounce"`
	LaneHalfWidth       float64       `yaml:"lane_half_width_m"`
	TTCFloor            time.Duration `yaml:"ttc_floor"`
}

// TrackerConfig contains the association parameters.
type TrackerConfig struct {
	GatingRadius float64       `yaml:"gating_radius_m"`
	TrackTimeout time.Duration `yaml:"track_timeout"`
	MaxTracks    int           `yaml:"max_tracks"`
}

// OvertakingConfig contains the manoeuvre thresholds.
type OvertakingConfig struct {
	LaneChangeThreshold float64 `yaml:"lane_change_threshold_m"`
	MergeBackTolerance  float64 `yaml:"merge_back_tolerance_m"`
	CompletionClearance float64 `yaml:"completion_clearance_m"`
}

// IndicatorConfig contains the flasher timing.
type IndicatorConfig struct {
	Period     time.Duration `yaml:"period"`
	AutoCancel time.Duration `yaml:"auto_cancel"`
}

// FailSafeConfig contains the fault escalation and recovery settings.
type FailSafeConfig struct {
	ResponseDeadline       time.Duration `yaml:"response_deadline"`
	StaleFeedTicks         int           `yaml:"stale_feed_ticks"`
	InputFaultSustainTicks int           `yaml:"input_fault_sustain_ticks"`
	RecoveryDebounce       time.Duration `yaml:"recovery_debounce"`
}

// CycleConfig contains the scheduler settings.
type CycleConfig struct {
	CadenceHz      int `yaml:"cadence_hz"`
	JournalBacklog int `yaml:"journal_backlog"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings for the override endpoint.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LIGHTGUARD_SECTION_KEY
// For example: LIGHTGUARD_DATABASE_PATH, LIGHTGUARD_CYCLE_CADENCE_HZ
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path as YAML with owner-only permissions.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Vehicle: VehicleConfig{
			ID:   "vehicle-001",
			Name: "LightGuard",
		},
		Control: controlFrom(lighting.DefaultConfig()),
		Cycle: CycleConfig{
			CadenceHz:      20,
			JournalBacklog: 64,
		},
		Database: DatabaseConfig{
			Path:        "./data/lightguard.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lightguard-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     200,
			FlushInterval: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				Issuer: "lightguard",
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LIGHTGUARD_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LIGHTGUARD_VEHICLE_ID"); v != "" {
		cfg.Vehicle.ID = v
	}

	if v := os.Getenv("LIGHTGUARD_CYCLE_CADENCE_HZ"); v != "" {
		hz, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LIGHTGUARD_CYCLE_CADENCE_HZ: %w", err)
		}
		cfg.Cycle.CadenceHz = hz
	}

	if v := os.Getenv("LIGHTGUARD_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("LIGHTGUARD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LIGHTGUARD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LIGHTGUARD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("LIGHTGUARD_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("LIGHTGUARD_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Always override the JWT secret from the environment in production.
	if v := os.Getenv("LIGHTGUARD_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	return nil
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Vehicle.ID == "" {
		errs = append(errs, "vehicle.id is required")
	}

	if err := c.Control.Lighting().Validate(); err != nil {
		errs = append(errs, "control: "+err.Error())
	}

	if c.Cycle.CadenceHz < 10 || c.Cycle.CadenceHz > 100 {
		errs = append(errs, "cycle.cadence_hz must be between 10 and 100")
	}
	if c.Cycle.JournalBacklog < 1 {
		errs = append(errs, "cycle.journal_backlog must be positive")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// The override endpoint can change what the driver sees; a weak secret
	// would let anyone forge a driver token.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set LIGHTGUARD_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// TickInterval returns the scheduler period for the configured cadence.
func (c *Config) TickInterval() time.Duration {
	if c.Cycle.CadenceHz <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Cycle.CadenceHz)
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// Lighting converts the YAML tuning into the immutable value shared by the
// control-cycle components.
func (cc ControlConfig) Lighting() lighting.Config {
	return lighting.Config{
		DetectionRange: cc.DetectionRange,
		SafeDistance:   cc.SafeDistance,

		BlinkingFrequency: cc.BlinkingFrequency,
		HornPulseMin:      cc.HornPulseMin,
		HornPulseMax:      cc.HornPulseMax,

		LateralVelocityThreshold: cc.TurnSignal.LateralVelocityThreshold,
		LateralVelocityDeadzone:  cc.TurnSignal.LateralVelocityDeadzone,
		SteeringAngleThreshold:   cc.TurnSignal.SteeringAngleThreshold,
		SteeringAngleDeadzone:    cc.TurnSignal.SteeringAngleDeadzone,
		YawRateThreshold:         cc.TurnSignal.YawRateThreshold,
		YawRateDeadzone:          cc.TurnSignal.YawRateDeadzone,
		ActivationDebounce:       cc.TurnSignal.ActivationDebounce,
		DeactivationDebounce:     cc.TurnSignal.DeactivationDebounce,

		StallRPMThreshold:   cc.Safety.StallRPMThreshold,
		StallRPMHysteresis:  cc.Safety.StallRPMHysteresis,
		StallSpeedThreshold: cc.Safety.StallSpeedThreshold,
		StallDebounce:       cc.Safety.StallDebounce,
		LaneHalfWidth:       cc.Safety.LaneHalfWidth,
		TTCFloor:            cc.Safety.TTCFloor,

		GatingRadius: cc.Tracker.GatingRadius,
		TrackTimeout: cc.Tracker.TrackTimeout,
		MaxTracks:    cc.Tracker.MaxTracks,

		LaneChangeThreshold: cc.Overtaking.LaneChangeThreshold,
		MergeBackTolerance:  cc.Overtaking.MergeBackTolerance,
		CompletionClearance: cc.Overtaking.CompletionClearance,

		IndicatorPeriod:     cc.Indicator.Period,
		IndicatorAutoCancel: cc.Indicator.AutoCancel,

		ResponseDeadline:       cc.FailSafe.ResponseDeadline,
		StaleFeedTicks:         cc.FailSafe.StaleFeedTicks,
		InputFaultSustainTicks: cc.FailSafe.InputFaultSustainTicks,
		RecoveryDebounce:       cc.FailSafe.RecoveryDebounce,
	}
}

func controlFrom(l lighting.Config) ControlConfig {
	return ControlConfig{
		DetectionRange:    l.DetectionRange,
		SafeDistance:      l.SafeDistance,
		BlinkingFrequency: l.BlinkingFrequency,
		HornPulseMin:      l.HornPulseMin,
		HornPulseMax:      l.HornPulseMax,
		TurnSignal: TurnSignalConfig{
			LateralVelocityThreshold: l.LateralVelocityThreshold,
			LateralVelocityDeadzone:  l.LateralVelocityDeadzone,
			SteeringAngleThreshold:   l.SteeringAngleThreshold,
			SteeringAngleDeadzone:    l.SteeringAngleDeadzone,
			YawRateThreshold:         l.YawRateThreshold,
			YawRateDeadzone:          l.YawRateDeadzone,
			ActivationDebounce:       l.ActivationDebounce,
			DeactivationDebounce:     l.DeactivationDebounce,
		},
		Safety: SafetyConfig{
			StallRPMThreshold:   l.StallRPMThreshold,
			StallRPMHysteresis:  l.StallRPMHysteresis,
			StallSpeedThreshold: l.StallSpeedThreshold,
			StallDebounce:       l.StallDebounce,
			LaneHalfWidth:       l.LaneHalfWidth,
			TTCFloor:            l.TTCFloor,
		},
		Tracker: TrackerConfig{
			GatingRadius: l.GatingRadius,
			TrackTimeout: l.TrackTimeout,
			MaxTracks:    l.MaxTracks,
		},
		Overtaking: OvertakingConfig{
			LaneChangeThreshold: l.LaneChangeThreshold,
			MergeBackTolerance:  l.MergeBackTolerance,
			CompletionClearance: l.CompletionClearance,
		},
		Indicator: IndicatorConfig{
			Period:     l.IndicatorPeriod,
			AutoCancel: l.IndicatorAutoCancel,
		},
		FailSafe: FailSafeConfig{
			ResponseDeadline:       l.ResponseDeadline,
			StaleFeedTicks:         l.StaleFeedTicks,
			InputFaultSustainTicks: l.InputFaultSustainTicks,
			RecoveryDebounce:       l.RecoveryDebounce,
		},
	}
}
