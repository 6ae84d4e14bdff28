package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tormoder/fit"

	"github.com/routeblend/routeblend/internal/types"
)

// FITDir is an offline activity/stream source backed by a directory of .fit
// files. The activity id is the file name without extension.
type FITDir struct {
	dir    string
	logger *slog.Logger
}

// NewFITDir creates a FIT-directory source.
func NewFITDir(dir string, logger *slog.Logger) *FITDir {
	if logger == nil {
		logger = slog.Default()
	}
	return &FITDir{dir: dir, logger: logger}
}

// ListActivities scans the directory and returns session metadata for one
// page of FIT files, sorted by file name.
func (f *FITDir) ListActivities(ctx context.Context, page, perPage int) ([]types.Activity, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read fit directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".fit") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	start := (page - 1) * perPage
	if start >= len(names) {
		return nil, nil
	}
	end := start + perPage
	if end > len(names) {
		end = len(names)
	}

	activities := make([]types.Activity, 0, end-start)
	for _, name := range names[start:end] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		act, err := f.readMetadata(filepath.Join(f.dir, name))
		if err != nil {
			// A single unreadable file is skipped, same as a failed stream fetch.
			f.logger.Warn("skipping unreadable FIT file", "file", name, "error", err)
			continue
		}
		activities = append(activities, act)
	}
	return activities, nil
}

// GetStream decodes the record messages of one FIT file into raw points.
// Records without position data are skipped; a file with no positioned
// records at all is a malformed stream.
func (f *FITDir) GetStream(ctx context.Context, activityID string) ([]types.RawPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.dir, activityID+".fit"))
	if err != nil {
		return nil, &UpstreamError{ActivityID: activityID, Err: err}
	}

	fitFile, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &UpstreamError{ActivityID: activityID, Err: fmt.Errorf("decode FIT file: %w", err)}
	}

	activity, err := fitFile.Activity()
	if err != nil {
		return nil, &UpstreamError{ActivityID: activityID, Err: fmt.Errorf("not an activity FIT file: %w", err)}
	}

	points := make([]types.RawPoint, 0, len(activity.Records))
	for _, r := range activity.Records {
		lat := r.PositionLat.Degrees()
		lon := r.PositionLong.Degrees()
		if math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}
		p := types.RawPoint{Lat: lat, Lon: lon}
		if !r.Timestamp.IsZero() {
			t := r.Timestamp
			p.Time = &t
		}
		if d := r.GetDistanceScaled(); !math.IsNaN(d) {
			p.Distance = &d
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("activity %s: %w", activityID, ErrMalformedStream)
	}
	return points, nil
}

func (f *FITDir) readMetadata(path string) (types.Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Activity{}, err
	}

	fitFile, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return types.Activity{}, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := fitFile.Activity()
	if err != nil {
		return types.Activity{}, fmt.Errorf("not an activity FIT file: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return types.Activity{}, fmt.Errorf("no sessions in FIT file")
	}

	session := activity.Sessions[0]
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return types.Activity{
		ID:            id,
		Name:          id,
		Type:          session.Sport.String(),
		StartTime:     session.StartTime,
		Distance:      session.GetTotalDistanceScaled(),
		MovingTime:    int(session.GetTotalTimerTimeScaled()),
		ElapsedTime:   int(session.GetTotalElapsedTimeScaled()),
		ElevationGain: float64(session.TotalAscent),
	}, nil
}
