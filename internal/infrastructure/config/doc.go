// Package config handles loading and validating LightGuard Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with LIGHTGUARD_* environment variables
//   - Validation of every section, including the control tuning
//   - Writing the effective configuration back with Save
//
// The control section maps one to one onto lighting.Config through
// ControlConfig.Lighting. Durations are Go duration strings:
//
//	control:
//	  horn_pulse_min: 200ms
//	  failsafe:
//	    response_deadline: 200ms
//	    recovery_debounce: 1s
//
// Security Considerations:
//   - The JWT secret guards the manual-override endpoint; set it via
//     LIGHTGUARD_JWT_SECRET rather than the file
//   - Save writes with 0600 permissions
//
// Usage:
//
//	cfg, err := config.Load("configs/lightguard.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctrl, err := control.New(cfg.Control.Lighting(), logger)
package config
