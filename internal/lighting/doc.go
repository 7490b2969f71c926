// Package lighting holds the vocabulary shared by every stage of the
// LightGuard control cycle: beam modes, indicator sides and the immutable
// tuning Config handed to each component at construction.
//
// Nothing in this package carries state. A Config is built once (usually
// from config.ControlConfig.Lighting()), validated, and then passed by value.
//
// # Usage
//
//	cfg := lighting.DefaultConfig()
//	cfg.DetectionRange = 150
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	half := cfg.HalfPeriod() // 250ms at 2Hz
package lighting
