package influxdb_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// testConfig returns a configuration for a local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "lightguard-dev-token",
		Org:           "lightguard",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// connectOrSkip connects to the local InfluxDB or skips the test.
func connectOrSkip(t *testing.T) *influxdb.Client {
	t.Helper()
	client, err := influxdb.Connect(testConfig(), "test-vehicle")
	if err != nil {
		t.Skipf("InfluxDB not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg, "test-vehicle")
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	_, err := influxdb.Connect(cfg, "test-vehicle")
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestHealthCheck(t *testing.T) {
	client := connectOrSkip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	if err := client.HealthCheck(cancelled); err == nil {
		t.Error("HealthCheck() should fail for a cancelled context")
	}
}

// =============================================================================
// Write Tests
// =============================================================================

func TestWriteTelemetry(t *testing.T) {
	client := connectOrSkip(t)

	var writeErr error
	var mu sync.Mutex
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})

	now := time.Now()
	client.WriteCommand(control.Output{Tick: 1, BeamMode: lighting.BeamLow, SystemState: failsafe.StateNormal, Rule: control.RuleBaseline}, now)
	client.WriteFault(failsafe.Critical(failsafe.KindTiming, "tick 300ms late"), now)
	client.WriteTickLatency(2*time.Millisecond, now)
	client.WritePoint("bench_run", map[string]string{"scenario": "A"}, map[string]any{"ticks": 600}, now)
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("write error = %v", writeErr)
	}
}

func TestClose(t *testing.T) {
	client := connectOrSkip(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	client.WriteTickLatency(time.Millisecond, time.Now())
	client.Flush()
}
