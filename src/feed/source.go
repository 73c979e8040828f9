package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"digit-observer/src/analysis"
	"digit-observer/src/helpers"
	"digit-observer/src/logger"
	"digit-observer/src/models"
	"digit-observer/src/utils"

	"github.com/cenkalti/backoff/v4"
)

// -----------------------------------------------------------------------------
// DerivTickSource periodically pulls historical tick batches over a feed
// session and pushes them downstream. Reconnection policy lives here, not in
// the session: a session that dies is discarded and a new one is opened under
// exponential backoff.
// -----------------------------------------------------------------------------

type DerivTickSource struct {
	Config    models.MFeedConfig
	Logger    *logger.Logger
	Scheduler *utils.MarketScheduler

	mu         sync.Mutex
	isRunning  atomic.Bool
	cancelFunc context.CancelFunc
	ctx        context.Context
	outputChan chan<- []models.MTick
}

// -----------------------------------------------------------------------------

func NewDerivTickSource(cfg models.MFeedConfig, l *logger.Logger) *DerivTickSource {
	if l == nil {
		l = logger.NewLogger(nil, "DerivTickSource")
	}
	return &DerivTickSource{
		Config:    cfg,
		Logger:    l,
		Scheduler: utils.NewMarketScheduler([]string{cfg.Symbol}, l),
	}
}

// -----------------------------------------------------------------------------

func (d *DerivTickSource) Name() string {
	return "deriv"
}

func (d *DerivTickSource) Symbol() string {
	return d.Config.Symbol
}

func (d *DerivTickSource) IsRealTime() bool {
	return true
}

// -----------------------------------------------------------------------------

// Start launches the source loop. Batches of ticks are delivered on
// outputChan until the context is cancelled or Stop is called.
func (d *DerivTickSource) Start(ctx context.Context, outputChan chan<- []models.MTick, wg *sync.WaitGroup) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning.Load() {
		return errors.New("source already running")
	}

	d.ctx, d.cancelFunc = context.WithCancel(ctx)
	d.outputChan = outputChan
	d.isRunning.Store(true)

	wg.Add(1)
	go d.runLoop(wg)

	d.Logger.Info("DerivTickSource started for symbol %s", d.Config.Symbol)
	return nil
}

// -----------------------------------------------------------------------------

func (d *DerivTickSource) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning.Load() {
		return nil
	}
	d.cancelFunc()
	d.isRunning.Store(false)
	d.Logger.Info("DerivTickSource stopped")
	return nil
}

// -----------------------------------------------------------------------------

// runLoop keeps a session alive for the lifetime of the source. Each pass
// opens a session, drives the request cadence until the session dies, then
// reconnects under backoff. Setup errors (bad URL) are permanent.
func (d *DerivTickSource) runLoop(wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		if d.ctx.Err() != nil {
			return
		}

		sess, err := d.connect(d.ctx)
		if err != nil {
			if d.ctx.Err() == nil {
				d.Logger.Error("Feed connection abandoned: %v", err)
			}
			return
		}

		d.requestLoop(sess)
		sess.Close()

		if d.ctx.Err() != nil {
			return
		}
		d.Logger.Warning("Feed session lost, reconnecting")
	}
}

// -----------------------------------------------------------------------------

// connect opens a session under exponential backoff and blocks until the
// session is actually open. ConnectionSetupError aborts the retry loop since
// a malformed endpoint never heals on its own.
func (d *DerivTickSource) connect(ctx context.Context) (*Session, error) {
	var sess *Session

	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = 0 // retry until the context says otherwise

	op := func() error {
		opened := make(chan struct{})
		failed := make(chan error, 1)

		cfg := EndpointConfig{
			URL:               d.Config.URL,
			AppID:             d.Config.AppID,
			KeepaliveInterval: time.Duration(d.Config.KeepaliveSeconds) * time.Second,
		}

		handlers := Handlers{
			OnOpen: func() {
				close(opened)
			},
			OnMessage: d.handleMessage,
			OnError: func(err error) {
				d.handleError(err)
				select {
				case failed <- err:
				default:
				}
			},
		}

		candidate, err := Open(cfg, handlers, d.Logger)
		if err != nil {
			var setupErr *helpers.ConnectionSetupError
			if errors.As(err, &setupErr) {
				return backoff.Permanent(err)
			}
			return err
		}

		select {
		case <-opened:
			sess = candidate
			return nil
		case <-candidate.Done():
			select {
			case err := <-failed:
				return err
			default:
				return errors.New("session closed before open")
			}
		case <-ctx.Done():
			candidate.Close()
			return backoff.Permanent(ctx.Err())
		}
	}

	if err := backoff.Retry(op, backoff.WithContext(eb, ctx)); err != nil {
		return nil, err
	}
	return sess, nil
}

// -----------------------------------------------------------------------------

// requestLoop issues a history request immediately and then on every refresh
// tick, skipping refreshes while the symbol's market is closed. Returns when
// the session or the source context ends.
func (d *DerivTickSource) requestLoop(sess *Session) {
	refresh := time.Duration(d.Config.RefreshSeconds) * time.Second
	if refresh <= 0 {
		refresh = 30 * time.Second
	}

	request := func() {
		if !d.Scheduler.IsSymbolOpen(d.Config.Symbol) {
			d.Logger.Debug("Market closed for %s, skipping refresh", d.Config.Symbol)
			return
		}
		reqID, err := sess.SendHistoryRequest(d.Config.Symbol, d.Config.TickCount)
		if err != nil {
			d.Logger.Warning("History request failed: %v", err)
			return
		}
		d.Logger.Debug("History request sent (req_id=%d)", reqID)
	}

	request()

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-sess.Done():
			return
		case <-ticker.C:
			request()
		}
	}
}

// -----------------------------------------------------------------------------

// handleMessage converts a history reply into a tick batch and pushes it
// downstream. Frames other than history replies are ignored.
func (d *DerivTickSource) handleMessage(msg *Message) {
	if msg.Kind != KindHistory || msg.History == nil {
		return
	}

	hist := msg.History
	digits, err := analysis.ExtractDigits(hist.Prices, hist.PipSize)
	if err != nil {
		d.Logger.Error("Digit extraction failed for batch (req_id=%d): %v", hist.ReqID, err)
		return
	}

	now := time.Now()
	// A reply without per-tick times still needs distinct, ordered epochs or
	// storage keyed on (symbol, epoch) would collapse the batch to one row.
	// Derive them from the arrival time, one second apart, newest last.
	base := now.Unix() - int64(len(hist.Prices)) + 1
	ticks := make([]models.MTick, len(hist.Prices))
	for i, price := range hist.Prices {
		epoch := base + int64(i)
		if i < len(hist.Times) {
			epoch = hist.Times[i]
		}
		ticks[i] = models.MTick{
			Symbol:    d.Config.Symbol,
			Epoch:     epoch,
			Price:     price,
			Digit:     digits[i],
			PipSize:   hist.PipSize,
			CreatedAt: now,
		}
	}

	select {
	case d.outputChan <- ticks:
	case <-d.ctx.Done():
	}
}

// -----------------------------------------------------------------------------

func (d *DerivTickSource) handleError(err error) {
	var remoteErr *helpers.RemoteApiError
	var malformedErr *helpers.MalformedPayloadError
	var transportErr *helpers.TransportError

	switch {
	case errors.As(err, &remoteErr):
		d.Logger.Warning("Feed rejected a request [%s]: %s", remoteErr.Code, remoteErr.Message)
	case errors.As(err, &malformedErr):
		d.Logger.Warning("Discarded unparseable frame: %v", err)
	case errors.As(err, &transportErr):
		d.Logger.Error("Feed transport failure: %v", err)
	default:
		d.Logger.Error("Feed error: %v", err)
	}
}
