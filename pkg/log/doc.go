/*
Package log provides structured logging via zerolog, shared by every
component of the server: the entity registries, the scheduler, the
reconciler, the admin HTTP server, and the command-line shell.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Context Loggers                     │          │
	│  │  - WithComponent("scheduler")               │          │
	│  │  - WithDomain("rooms")                      │          │
	│  │  - WithEntityID("chars", 42)                │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

	schedLog := log.WithComponent("scheduler")
	schedLog.Info().Msg("driver loop started")

	roomsLog := log.WithDomain("rooms")
	roomsLog.Warn().Uint64("entity_id", 5).Msg("preflight found stale dirty flag")

Every registry is constructed with its own child logger (see
NewRegistry in pkg/entity), which it uses for its preflight messages;
passing zerolog.Nop() silences those. Per-entity load and save messages
go through WithEntityID, which derives from the package-level Logger.

# Design Patterns

Context Logger Pattern: create a child logger bound to a component or
domain once, then pass it down, rather than re-specifying fields at
every call site.

Structured Logging Pattern: use typed fields (.Str, .Uint64, .Err)
instead of string interpolation, so logs stay queryable.

# See Also

  - https://github.com/rs/zerolog
*/
package log
