// Package logging provides structured logging for LightGuard Core.
//
// This package wraps Go's standard log/slog package so that every record
// carries the same default fields (service, version) and every component
// can be handed the same value.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	ctrl, err := control.New(cfg.Control.Lighting(), logger.Component("control"))
//
// The control cycle logs on state changes and faults only, never once per
// tick at info level or above.
package logging
