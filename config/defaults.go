package config

import "time"

// Default runtime limits and guardrails for the table-structure discovery
// server. These values are conservative and can be overridden by future
// configuration mechanisms (env, CLI, or files). They are referenced by
// internal/runtime and internal/gridio.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenFiles          = 8

	// Payload and row limits
	DefaultMaxPayloadBytes = 256 * 1024 // 256KB
	DefaultMaxRowsPerFile  = 50_000
	DefaultPreviewRowLimit = 10 // First 10 rows by default

	// Classifier bounds (mirrored in extractor.DefaultParams)
	DefaultMaxFDLCandidates   = 100
	DefaultMaxSummaryStrength = 6
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// File handle cache
	DefaultFileIdleTTL      = 10 * time.Minute
	DefaultFileCleanupEvery = 1 * time.Minute
)
