// Package actuator models the physical state of the lamps and horn between
// ticks. Each model owns its own timers and is mutated only through its own
// methods; every other component reads the State snapshots.
//
// All timing advances by an explicit elapsed duration passed to Advance.
// Nothing sleeps and nothing reads the wall clock.
//
//	┌──────────┐   Set / StartBlinking / SetManual   ┌──────────────┐
//	│ control  │ ───────────────────────────────────▶│ Beam         │──▶ Edge (entered high)
//	│          │   Trigger / TriggerAt / Release     ├──────────────┤
//	│          │ ───────────────────────────────────▶│ Horn         │
//	│          │   Command(side, hazard)             ├──────────────┤
//	│          │ ───────────────────────────────────▶│ Indicator    │
//	└──────────┘                                     └──────────────┘
package actuator
