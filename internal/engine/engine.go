package engine

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/genricoloni/coverring/internal/domain"
	"github.com/genricoloni/coverring/internal/estimator"
	"github.com/genricoloni/coverring/internal/renderer"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// debounceDuration is the silence required before artwork is refreshed, so
// skipping through tracks does not fetch every cover
const debounceDuration = 500 * time.Millisecond

// artworkResult is a processed cover coming back from a worker
type artworkResult struct {
	seq uint64
	img image.Image
}

// Engine orchestrates the cover panel.
// It owns the panel and the renderer: every frame, metadata event and
// position sample is handled on the single loop goroutine. Artwork is
// fetched and processed by workers and only applied on the loop.
type Engine struct {
	logger    *zap.Logger
	cfg       domain.Config
	monitor   domain.Monitor
	fetcher   domain.Fetcher
	processor domain.Processor
	panel     domain.Panel
	renderer  *renderer.Renderer
	estimator *estimator.Estimator

	debounce time.Duration
	now      func() time.Time

	current  domain.MediaMetadata
	hasTrack bool

	artwork   chan artworkResult
	artSeq    uint64 // sequence of the latest artwork request
	artCancel context.CancelFunc
	workers   sync.WaitGroup

	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a new orchestration engine
func NewEngine(
	logger *zap.Logger,
	cfg domain.Config,
	mon domain.Monitor,
	fetch domain.Fetcher,
	proc domain.Processor,
	panel domain.Panel,
	rend *renderer.Renderer,
	est *estimator.Estimator,
) *Engine {
	return &Engine{
		logger:    logger,
		cfg:       cfg,
		monitor:   mon,
		fetcher:   fetch,
		processor: proc,
		panel:     panel,
		renderer:  rend,
		estimator: est,
		debounce:  debounceDuration,
		now:       time.Now,
		artwork:   make(chan artworkResult),
	}
}

// Start launches the monitor and the engine's loop in goroutines.
// It returns immediately (non-blocking). The loop outlives ctx's deadline
// and runs until Stop.
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	e.done = make(chan struct{})

	go func() {
		if err := e.monitor.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Error("Monitor stopped with error, progress will not update", zap.Error(err))
		}
	}()

	go e.runLoop(runCtx)
	return nil
}

// runLoop is the main event loop: it renders a frame on every tick,
// debounces artwork requests and applies the covers workers send back
func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)
	defer e.workers.Wait()
	defer e.cancelArtwork()

	events := e.monitor.Events()
	positions := e.monitor.Positions()

	timer := time.NewTimer(e.debounce)
	timer.Stop() // Start with stopped timer
	defer timer.Stop()

	frames := time.NewTicker(e.cfg.GetFrameInterval())
	defer frames.Stop()

	var pendingMeta *domain.MediaMetadata

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return

		case meta, ok := <-events:
			if !ok {
				e.logger.Info("Monitor events channel closed")
				events = nil
				continue
			}
			if e.handleMetadata(meta) {
				// A newer track supersedes any cover still in flight
				e.cancelArtwork()
				pendingMeta = &meta
				timer.Reset(e.debounce)
			}

		case sample, ok := <-positions:
			if !ok {
				positions = nil
				continue
			}
			e.handleSample(sample)

		case <-timer.C:
			if pendingMeta != nil {
				e.requestArtwork(ctx, *pendingMeta)
				pendingMeta = nil
			}

		case res := <-e.artwork:
			e.applyArtwork(res)

		case now := <-frames.C:
			e.renderFrame(ctx, now)
		}
	}
}

// handleMetadata updates the current track and feeds its position to the
// estimator. It reports whether the artwork needs refreshing.
func (e *Engine) handleMetadata(meta domain.MediaMetadata) bool {
	if e.hasTrack && meta.Player != e.current.Player &&
		e.current.Status == domain.StatusPlaying && meta.Status != domain.StatusPlaying {
		e.logger.Debug("Ignoring idle player while another one plays",
			zap.String("player", meta.Player),
			zap.String("current", e.current.Player))
		return false
	}

	newTrack := !e.hasTrack || meta.Player != e.current.Player || !meta.SameTrack(e.current)
	artChanged := newTrack || meta.ArtUrl != e.current.ArtUrl

	if newTrack {
		e.logger.Info("Track changed",
			zap.String("player", meta.Player),
			zap.String("track", meta.Title),
			zap.String("artist", meta.Artist),
			zap.Duration("length", meta.Length))
		e.renderer.NewTrack()
		e.estimator.Reset()
	} else if meta.Position == 0 {
		// Status-only changes may come without a position; keep the estimate
		meta.Position = time.Duration(e.estimator.Tick(e.now()) * float64(meta.Length))
	}

	e.current = meta
	e.hasTrack = true

	e.estimator.OnAuthoritativeSample(meta.Position, meta.Length, meta.Status == domain.StatusPlaying)
	return artChanged
}

// handleSample feeds a polled or seeked position to the estimator
func (e *Engine) handleSample(s domain.PositionSample) {
	if !e.hasTrack {
		return
	}
	if s.Player != "" && e.current.Player != "" && s.Player != e.current.Player {
		e.logger.Debug("Ignoring position of another player", zap.String("player", s.Player))
		return
	}

	length := s.Length
	if length <= 0 {
		length = e.current.Length
	}
	e.current.Status = s.Status

	res := e.estimator.OnAuthoritativeSample(s.Position, length, s.Status == domain.StatusPlaying)
	if res.Corrected {
		e.logger.Info("Progress corrected",
			zap.Float64("ratio", res.Ratio),
			zap.Float64("estimate", res.Estimate),
			zap.Float64("drift", res.Drift),
			zap.Bool("seeked", s.Seeked))
		return
	}
	e.logger.Debug("Position sample",
		zap.Duration("position", s.Position),
		zap.Bool("adopted", res.Adopted),
		zap.Float64("drift", res.Drift))
}

// renderFrame advances the progress border and presents what changed
func (e *Engine) renderFrame(ctx context.Context, now time.Time) {
	e.renderer.SetCompletion(e.estimator.Tick(now))

	dirty := e.renderer.Render(e.panel.Overlay())
	if err := e.panel.Present(ctx, dirty); err != nil {
		e.logger.Warn("Failed to present frame", zap.Error(err))
	}
}

// requestArtwork starts a worker for the cover of meta. Only the result of
// the latest request is applied.
func (e *Engine) requestArtwork(ctx context.Context, meta domain.MediaMetadata) {
	e.cancelArtwork()
	e.artSeq++

	if meta.ArtUrl == "" {
		e.logger.Warn("No artwork URL found",
			zap.String("track", meta.Title),
			zap.String("artist", meta.Artist))
		e.panel.SetArtwork(nil)
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	e.artCancel = cancel
	seq := e.artSeq

	e.workers.Add(1)
	go func() {
		defer e.workers.Done()
		img, ok := e.loadArtwork(jobCtx, meta)
		if !ok {
			return
		}
		select {
		case e.artwork <- artworkResult{seq: seq, img: img}:
		case <-jobCtx.Done():
		}
	}()
}

// cancelArtwork abandons the artwork worker in flight, if any
func (e *Engine) cancelArtwork() {
	if e.artCancel != nil {
		e.artCancel()
		e.artCancel = nil
	}
}

// applyArtwork installs a processed cover unless a newer one was requested
func (e *Engine) applyArtwork(res artworkResult) {
	if res.seq != e.artSeq {
		e.logger.Debug("Dropping stale artwork", zap.Uint64("seq", res.seq))
		return
	}
	e.cancelArtwork()
	e.panel.SetArtwork(res.img)
	e.logger.Info("Artwork updated successfully", zap.String("mode", e.cfg.GetMode()))
}

// loadArtwork fetches and renders the cover of a track. It runs on a
// worker goroutine and must not touch the panel.
func (e *Engine) loadArtwork(ctx context.Context, meta domain.MediaMetadata) (image.Image, bool) {
	e.logger.Info("Processing artwork",
		zap.String("track", meta.Title),
		zap.String("artist", meta.Artist),
		zap.String("album", meta.Album))

	imgData, err := e.fetcher.Fetch(ctx, meta.ArtUrl)
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Error("Failed to fetch artwork", zap.Error(err))
		}
		return nil, false
	}

	img, err := e.processor.Process(ctx, imgData, e.cfg.GetPanelSize(), e.cfg.GetMode())
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Error("Failed to process artwork", zap.Error(err))
		}
		return nil, false
	}
	return img, true
}

// Stop ends the loop, stops the monitor and publishes the last frame
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	if e.cancel == nil {
		return nil
	}
	e.cancel()

	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return multierr.Combine(
		e.monitor.Stop(ctx),
		e.panel.Flush(ctx),
	)
}
