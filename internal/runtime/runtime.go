package runtime

import (
	"context"
	"time"

	"github.com/tablescout/tablescout/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency and file guardrails configured for the
// server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int
	MaxOpenFiles          int

	// Payload and row bounds
	MaxPayloadBytes int
	MaxRowsPerFile  int
	PreviewRowLimit int

	// Timeouts
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with sensible fallbacks when values are unset.
func NewLimits(maxConcurrentRequests, maxOpenFiles int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxOpenFiles <= 0 {
		maxOpenFiles = config.DefaultMaxOpenFiles
	}

	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxOpenFiles:          maxOpenFiles,
		MaxPayloadBytes:       config.DefaultMaxPayloadBytes,
		MaxRowsPerFile:        config.DefaultMaxRowsPerFile,
		PreviewRowLimit:       config.DefaultPreviewRowLimit,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// Controller coordinates runtime semaphores for request and open-file
// guardrails, and doubles as the gate gridio.Manager acquires/releases
// against when caching opened grids (§5).
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	fileSemaphore    *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		fileSemaphore:    semaphore.NewWeighted(int64(limits.MaxOpenFiles)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireFile reserves an open-file slot.
func (c *Controller) AcquireFile(ctx context.Context) error {
	return c.fileSemaphore.Acquire(ctx, 1)
}

// ReleaseFile frees an open-file slot.
func (c *Controller) ReleaseFile() {
	c.fileSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
