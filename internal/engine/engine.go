// Package engine owns the full dataset lifecycle: fetch, normalize, index,
// classify, style and the current view. All public operations go through one
// Engine instance; nothing is ambient.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/routeblend/routeblend/internal/geom"
	"github.com/routeblend/routeblend/internal/overlap"
	"github.com/routeblend/routeblend/internal/pick"
	"github.com/routeblend/routeblend/internal/render"
	"github.com/routeblend/routeblend/internal/source"
	"github.com/routeblend/routeblend/internal/style"
	"github.com/routeblend/routeblend/internal/types"
	"github.com/routeblend/routeblend/internal/view"
)

// Config holds the engine tunables.
type Config struct {
	CanvasWidth  int `mapstructure:"canvas_width" validate:"min=16"`
	CanvasHeight int `mapstructure:"canvas_height" validate:"min=16"`

	// Prox is the overlap grid cell size in world units.
	Prox float64 `mapstructure:"prox" validate:"gt=0"`
	// SimplifyTolerance thins dense streams before indexing; 0 disables.
	SimplifyTolerance float64 `mapstructure:"simplify_tolerance" validate:"min=0"`
	// PickTolerancePx is the pick radius in screen pixels.
	PickTolerancePx float64 `mapstructure:"pick_tolerance_px" validate:"gt=0"`

	// PerPage and MaxPages bound the activity listing.
	PerPage  int `mapstructure:"per_page" validate:"min=1,max=200"`
	MaxPages int `mapstructure:"max_pages" validate:"min=1"`
	// FetchWorkers is the stream download parallelism.
	FetchWorkers int `mapstructure:"fetch_workers" validate:"min=1"`

	Style style.Config `mapstructure:"style"`

	Logger *slog.Logger `mapstructure:"-" validate:"-"`
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		CanvasWidth:       1280,
		CanvasHeight:      800,
		Prox:              overlap.DefaultProx,
		SimplifyTolerance: 0,
		PickTolerancePx:   pick.DefaultTolerancePx,
		PerPage:           50,
		MaxPages:          4,
		FetchWorkers:      4,
		Style:             style.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks the config invariants, including the nested style config.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	return c.Style.Validate()
}

// LoadSummary reports the outcome of a dataset load.
type LoadSummary struct {
	Tracks   int `json:"tracks"`
	Dropped  int `json:"dropped"`
	Segments int `json:"segments"`
}

// Hit is a resolved pick with the owning activity's metadata.
type Hit struct {
	Activity types.Activity `json:"activity"`
	Distance float64        `json:"distance"`
}

// Engine holds all mutable visualization state behind a mutex. The render
// path never takes the lock for long: Snapshot hands out the current buffer
// and view by value and Frame works on that copy.
type Engine struct {
	cfg        Config
	activities source.ActivitySource
	streams    source.StreamSource
	logger     *slog.Logger

	mu       sync.Mutex
	tracks   []types.Track
	segments []types.Segment
	index    *overlap.Index
	bounds   types.BoundingBox
	filters  *style.Filters
	view     view.State
	buffer   *render.Buffer
}

// New creates an engine over the given sources.
func New(cfg Config, activities source.ActivitySource, streams source.StreamSource) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:        cfg,
		activities: activities,
		streams:    streams,
		logger:     logger,
		filters:    style.NewFilters(),
		view:       view.Default(float64(cfg.CanvasWidth), float64(cfg.CanvasHeight)),
		buffer:     &render.Buffer{},
		bounds:     types.EmptyBounds(),
	}, nil
}

// LoadDataset lists activities, fetches every stream, and rebuilds all
// derived state wholesale. A load fully replaces the previous dataset; there
// is no incremental merge. Per-activity fetch failures are logged and that
// activity dropped; only listing failures (notably authentication) abort the
// load. Concurrent loads are serialized on the engine mutex, so a second
// load waits for the first and then replaces its result.
func (e *Engine) LoadDataset(ctx context.Context) (LoadSummary, error) {
	activities, err := e.listAll(ctx)
	if err != nil {
		return LoadSummary{}, err
	}

	pool := source.NewFetchPool(source.FetchPoolConfig{
		Workers: e.cfg.FetchWorkers,
		Streams: e.streams,
		OnProgress: func(completed, total, failed int) {
			e.logger.Debug("stream fetch progress", "completed", completed, "total", total, "failed", failed)
		},
	})
	results := pool.Run(ctx, activities)

	var (
		tracks  []types.Track
		dropped int
	)
	for _, r := range results {
		if r.Err != nil {
			// One bad stream never aborts the batch.
			dropped++
			e.logger.Warn("dropping activity",
				"activity_id", r.Activity.ID,
				"name", r.Activity.Name,
				"error", r.Err,
			)
			continue
		}
		track, ok := geom.Normalize(r.Activity, r.Points)
		if !ok {
			dropped++
			e.logger.Warn("dropping activity with too few points",
				"activity_id", r.Activity.ID,
				"points", len(r.Points),
			)
			continue
		}
		track = geom.SimplifyTrack(track, e.cfg.SimplifyTolerance)
		tracks = append(tracks, track)
	}

	return e.install(tracks, dropped)
}

// RawTrack pairs an activity with its fetched raw stream.
type RawTrack struct {
	Activity types.Activity
	Points   []types.RawPoint
}

// LoadTracks rebuilds all derived state from pre-fetched raw streams, in the
// given order. Used by tests and the one-shot render path.
func (e *Engine) LoadTracks(streams []RawTrack) (LoadSummary, error) {
	var (
		tracks  []types.Track
		dropped int
	)
	for _, rt := range streams {
		track, ok := geom.Normalize(rt.Activity, rt.Points)
		if !ok {
			dropped++
			continue
		}
		tracks = append(tracks, geom.SimplifyTrack(track, e.cfg.SimplifyTolerance))
	}
	return e.install(tracks, dropped)
}

// install replaces the dataset with the given tracks and rebuilds every
// derived structure. Zero usable tracks empties the buffer and resets the
// view rather than failing hard.
func (e *Engine) install(tracks []types.Track, dropped int) (LoadSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(tracks) == 0 {
		e.tracks = nil
		e.segments = nil
		e.index = nil
		e.bounds = types.EmptyBounds()
		e.buffer = &render.Buffer{}
		e.view = view.Default(float64(e.cfg.CanvasWidth), float64(e.cfg.CanvasHeight))
		return LoadSummary{Dropped: dropped}, source.ErrEmptyDataset
	}

	index := overlap.Build(tracks, e.cfg.Prox)
	segments := overlap.Classify(tracks, index)
	bounds := types.TrackBounds(tracks)

	e.tracks = tracks
	e.segments = segments
	e.index = index
	e.bounds = bounds
	e.buffer = render.Build(segments, tracks, e.filters, e.cfg.Style)
	e.view = view.FitToData(bounds, float64(e.cfg.CanvasWidth), float64(e.cfg.CanvasHeight))

	e.logger.Info("dataset loaded",
		"tracks", len(tracks),
		"dropped", dropped,
		"segments", len(segments),
		"grid_cells", index.Cells(),
		"bounds", bounds.String(),
	)
	return LoadSummary{Tracks: len(tracks), Dropped: dropped, Segments: len(segments)}, nil
}

func (e *Engine) listAll(ctx context.Context) ([]types.Activity, error) {
	var all []types.Activity
	for page := 1; page <= e.cfg.MaxPages; page++ {
		batch, err := e.activities.ListActivities(ctx, page, e.cfg.PerPage)
		if err != nil {
			if errors.Is(err, source.ErrUnauthenticated) {
				return nil, err
			}
			return nil, fmt.Errorf("list activities page %d: %w", page, err)
		}
		all = append(all, batch...)
		if len(batch) < e.cfg.PerPage {
			break
		}
	}
	return all, nil
}

// SetFilter toggles an activity type and rebuilds the render buffer. Stored
// overlap counts are untouched; only segment visibility changes, so no
// reclassification happens.
func (e *Engine) SetFilter(activityType string, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.filters.Set(activityType, enabled)
	e.buffer = render.Build(e.segments, e.tracks, e.filters, e.cfg.Style)
}

// Filters returns the visibility of every activity type in the dataset.
func (e *Engine) Filters() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make([]string, 0, 4)
	have := make(map[string]struct{})
	for i := range e.tracks {
		t := e.tracks[i].Type
		if _, ok := have[t]; !ok {
			have[t] = struct{}{}
			seen = append(seen, t)
		}
	}
	return e.filters.States(seen)
}

// Activities returns the metadata of all loaded tracks.
func (e *Engine) Activities() []types.Activity {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.Activity, len(e.tracks))
	for i := range e.tracks {
		out[i] = e.tracks[i].Activity
	}
	return out
}

// PickAt resolves a screen click to the nearest renderable segment's
// activity, or ok=false if nothing is within tolerance.
func (e *Engine) PickAt(sx, sy float64) (Hit, bool) {
	e.mu.Lock()
	buf, vs, tracks := e.buffer, e.view, e.tracks
	e.mu.Unlock()

	hit, ok := pick.At(buf, vs, sx, sy, e.cfg.PickTolerancePx)
	if !ok || hit.TrackIdx >= len(tracks) {
		return Hit{}, false
	}
	return Hit{Activity: tracks[hit.TrackIdx].Activity, Distance: hit.Distance}, true
}

// ZoomAt zooms by factor anchored at a screen position.
func (e *Engine) ZoomAt(sx, sy, factor float64) view.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = e.view.ZoomAt(sx, sy, factor)
	return e.view
}

// PanBy shifts the view by a screen-space delta.
func (e *Engine) PanBy(dx, dy float64) view.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = e.view.PanBy(dx, dy)
	return e.view
}

// ResetView restores the default view.
func (e *Engine) ResetView() view.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = view.Default(float64(e.cfg.CanvasWidth), float64(e.cfg.CanvasHeight))
	return e.view
}

// FitToData frames the loaded dataset.
func (e *Engine) FitToData() view.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = view.FitToData(e.bounds, float64(e.cfg.CanvasWidth), float64(e.cfg.CanvasHeight))
	return e.view
}

// Snapshot returns the current buffer and view for one frame. The buffer is
// replaced wholesale on rebuilds and never mutated in place, so the render
// path can read it without holding the engine lock.
func (e *Engine) Snapshot() (*render.Buffer, view.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer, e.view
}

// Frame rasterizes the current state at canvas size.
func (e *Engine) Frame() image.Image {
	buf, vs := e.Snapshot()
	return render.Frame(buf, vs, e.cfg.CanvasWidth, e.cfg.CanvasHeight)
}

// FrameAt rasterizes the current state at an explicit size, scaling the view
// transform to the requested canvas.
func (e *Engine) FrameAt(width, height int) image.Image {
	buf, vs := e.Snapshot()
	if width != e.cfg.CanvasWidth || height != e.cfg.CanvasHeight {
		factor := float64(width) / float64(e.cfg.CanvasWidth)
		vs.Scale *= factor
		vs.PanX *= factor
		vs.PanY *= factor
	}
	return render.Frame(buf, vs, width, height)
}

// CanvasSize returns the configured canvas dimensions.
func (e *Engine) CanvasSize() (int, int) {
	return e.cfg.CanvasWidth, e.cfg.CanvasHeight
}
