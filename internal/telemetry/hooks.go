package telemetry

import "github.com/rs/zerolog"

// Hooks logs the table-discovery server's lifecycle: process start/stop and
// per-client scan-session start/end. It is intentionally minimal; a metrics
// backend can be layered in later under this package.
type Hooks struct {
	logger zerolog.Logger
}

// NewHooks constructs a Hooks instance with the provided logger.
func NewHooks(logger zerolog.Logger) *Hooks {
	return &Hooks{logger: logger}
}

// OnServerStart is called when the server begins accepting discovery requests.
func (h *Hooks) OnServerStart() {
	h.logger.Info().Msg("table discovery server starting")
}

// OnServerStop is called during server shutdown.
func (h *Hooks) OnServerStop() {
	h.logger.Info().Msg("table discovery server stopping")
}

// OnSessionStart records a client beginning a discovery session.
func (h *Hooks) OnSessionStart(sessionID string) {
	h.logger.Info().Str("session_id", sessionID).Msg("discovery session started")
}

// OnSessionEnd records a client's discovery session ending.
func (h *Hooks) OnSessionEnd(sessionID string) {
	h.logger.Info().Str("session_id", sessionID).Msg("discovery session ended")
}
