package interfaces

import (
	"context"
	"sync"

	"digit-observer/src/models"
)

// -----------------------------------------------------------------------------
// ITickSource interface for components that feed tick batches into the pipeline.
// -----------------------------------------------------------------------------

type ITickSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Symbol returns the instrument this source is bound to
	Symbol() string

	// -----------------------------------------------------------------------------

	// IsRealTime returns true if the source provides real-time data
	IsRealTime() bool

	// -----------------------------------------------------------------------------

	// Start begins the data fetching process
	// ctx: controls the lifecycle (cancellation stops the source)
	// outputChan: channel to push tick batches to
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, outputChan chan<- []models.MTick, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates the data fetching process (legacy/manual stop)
	// Ideally, cancelling the context passed to Start should be enough.
	Stop() error
}
