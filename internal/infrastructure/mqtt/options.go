package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
)

// Connection constants.
const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 30 * time.Second

	maxQoS        = 2
	tlsMinVersion = tls.VersionTLS12

	clientIDSuffixLen = 8
)

// buildClientOptions creates paho options from config and returns the
// client ID used, which is the configured ID plus a random suffix.
func buildClientOptions(cfg config.MQTTConfig) (*pahomqtt.ClientOptions, string) {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	clientID := uniqueClientID(cfg.Broker.ClientID)
	opts.SetClientID(clientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetOrderMatters(false)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts, clientID
}

func uniqueClientID(base string) string {
	if base == "" {
		base = "lightguard-core"
	}
	return base + "-" + uuid.NewString()[:clientIDSuffixLen]
}

// configureLWT makes the broker announce an unexpected disconnect on the
// retained status topic.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":%q,"reason":"unexpected_disconnect","timestamp":%q}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
	opts.SetWill(Topics{}.SystemStatus(), willPayload, 1, true)
}

func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":%q,"timestamp":%q}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":%q,"reason":"graceful_shutdown","timestamp":%q}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
