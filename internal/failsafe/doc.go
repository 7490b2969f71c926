// Package failsafe owns the system state and the fault taxonomy of the
// control cycle.
//
// The Manager is the only writer of State. Components never change it
// directly; they hand tagged Faults to the controller, which reports them
// here.
//
//	         CRITICAL fault                 manual beam present
//	NORMAL ──────────────────▶ ERROR   NORMAL ─────────────────▶ MANUAL_OVERRIDE
//	   ▲                         │        ▲                            │
//	   └── healthy input held ───┘        └──── manual beam cleared ───┘
//	       for RecoveryDebounce
//
// A WARNING is logged and recorded but changes nothing.
//
// The FeedMonitor turns perception feed health (missing frames, discarded
// observations) into INPUT_FAULT reports, escalating sustained problems to
// CRITICAL. CheckTiming does the same for deadline overruns.
//
// # Usage
//
//	mgr := failsafe.NewManager(cfg, log)
//	feed := failsafe.NewFeedMonitor(cfg)
//
//	for _, f := range feed.Observe(frame != nil, res.Discarded) {
//	    mgr.Report(f)
//	}
//	if mgr.Recover(feed.Healthy(), dt) {
//	    // reset overtaking, stall and turn-signal sub-state
//	}
//	faults, transitions := mgr.TakeEvents()
package failsafe
