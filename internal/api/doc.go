// Package api implements the diagnostics HTTP API and WebSocket feed for
// LightGuard Core.
//
// This package provides:
//   - GET /api/v1/health with per-component health and the current system state
//   - GET /api/v1/status returning the latest control output
//   - GET /api/v1/faults paging the fault and transition journal
//   - GET/PUT /api/v1/override for the driver's manual beam request
//   - GET /api/v1/ws streaming every tick on the "command" channel
//
// # Architecture
//
//	cycle.Runner ──Latest()──▶ /status, /health
//	     │
//	     └──Broadcast("command")──▶ Hub ──▶ WebSocket clients
//	journal ──List()──▶ /faults
//	/override ──SetManual()──▶ cycle.Inbox ──▶ next tick
//
// # Security
//
// Status, health and the WebSocket feed are open to the vehicle network.
// /faults and /override require an HS256 bearer token whose role grants the
// matching permission (see package auth).
//
// # Usage
//
//	srv, err := api.New(api.Deps{
//	    Config:   cfg.API,
//	    WS:       cfg.WebSocket,
//	    Security: cfg.Security,
//	    Logger:   logger,
//	    Status:   runner,
//	    Override: inbox,
//	    Faults:   journalRepo,
//	})
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Close()
package api
