package scanner

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/dtw"
	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/monitoring"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/series"
)

// Scanner slides the reference window across the series and scores every offset with the
// warp distance
type Scanner struct {
	cfg    Config
	logger logrus.FieldLogger
}

// New validates cfg and creates a scanner. A nil logger discards output.
func New(cfg Config, logger logrus.FieldLogger) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.DTW.ReturnPath = false
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Scanner{cfg: cfg, logger: logger.WithField("component", component)}, nil
}

// Config returns the validated configuration
func (s *Scanner) Config() Config {
	return s.cfg
}

// Scan computes the distance curve over every offset in [0, N-M] and selects the admissible
// offset with the smallest distance, ties going to the earliest offset. The admissible range is
// checked before any distance is computed. A failed or cancelled scan returns no result.
func (s *Scanner) Scan(ctx context.Context, ser *series.Series, ref *series.ReferenceWindow) (*Result, error) {
	if ser == nil || ref == nil || ref.Len() == 0 {
		return nil, apperrors.NewInsufficientDataError(component, "Scan", "empty series or reference window")
	}
	n, m := ser.Len(), ref.Len()
	if ref.StartIndex < 0 || ref.EndIndex() >= n {
		return nil, apperrors.NewDataError(component, "Scan",
			"reference window [%d, %d] lies outside a series of %d observations", ref.StartIndex, ref.EndIndex(), n)
	}

	rng, err := searchRange(n, m, ref.StartIndex, s.cfg.ExclusionFactor)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	log := s.logger.WithFields(logrus.Fields{
		"observations":  n,
		"window_length": m,
		"offsets":       n - m + 1,
		"admissible":    rng.Size(),
		"method":        s.cfg.DTW.Method,
		"radius":        s.cfg.DTW.Radius,
		"workers":       s.cfg.workerCount(),
	})
	log.Info("scan started")

	distances, err := s.computeCurve(ctx, ser, ref)
	if err != nil {
		log.WithError(err).Warn("scan aborted")
		return nil, err
	}

	curve := buildCurve(ser, distances, rng)
	ranked := rankMatches(curve, rng, m, s.cfg.TopMatches)

	matches := make([]Match, len(ranked))
	for i, t := range ranked {
		matches[i] = Match{
			Rank:     i + 1,
			Offset:   t,
			Start:    ser.Timestamp(t),
			End:      ser.Timestamp(t + m - 1),
			Distance: distances[t],
		}
	}

	best := matches[0]
	opts := s.cfg.DTW
	opts.ReturnPath = true
	_, path, err := dtw.Distance(ser.Window(best.Offset, m), ref.View(), opts)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrorKindData, component, "Scan")
	}
	best.Path = path
	matches[0] = best

	elapsed := time.Since(started)
	monitoring.RecordScan(string(s.cfg.DTW.Method), len(distances), elapsed)

	log.WithFields(logrus.Fields{
		"best_offset":   best.Offset,
		"best_start":    best.Start.Format(time.RFC3339),
		"best_distance": best.Distance,
		"elapsed":       elapsed.String(),
	}).Info("scan completed")

	return &Result{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		Elapsed:    elapsed,
		Config:     s.cfg,
		Series:     ser,
		Reference:  ref,
		Curve:      curve,
		Range:      rng,
		BestFit:    best,
		TopMatches: matches,
	}, nil
}

// computeCurve scores every offset in [0, N-M] on the worker pool
func (s *Scanner) computeCurve(ctx context.Context, ser *series.Series, ref *series.ReferenceWindow) ([]float64, error) {
	m := ref.Len()
	total := ser.Len() - m + 1
	reference := ref.View()
	opts := s.cfg.DTW

	out := make([]float64, total)
	score := func(t int) (float64, error) {
		d, _, err := dtw.Distance(ser.Window(t, m), reference, opts)
		if err != nil {
			return 0, apperrors.WrapError(err, apperrors.ErrorKindData, component, "computeCurve").
				WithContext("offset", t)
		}
		return d, nil
	}

	workers := s.cfg.workerCount()
	jobs := splitOffsets(total, workers)
	if workers > len(jobs) {
		workers = len(jobs)
	}

	pool := newWorkerPool(ctx, workers, len(jobs), score, out)
	pool.Start()
	for _, job := range jobs {
		if err := pool.Submit(job); err != nil {
			break
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}
	// a cancellation that lands after the last offset still aborts the run
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildCurve(ser *series.Series, distances []float64, rng SearchRange) *DistanceCurve {
	points := make([]CurvePoint, len(distances))
	for t, d := range distances {
		points[t] = CurvePoint{
			Offset:    t,
			Timestamp: ser.Timestamp(t),
			Distance:  d,
			Excluded:  !rng.Contains(t),
		}
	}
	return &DistanceCurve{points: points}
}

// rankMatches returns up to limit admissible offsets ordered by (distance, offset), each at
// least m offsets away from every offset ranked before it. The first entry is the argmin.
func rankMatches(curve *DistanceCurve, rng SearchRange, m, limit int) []int {
	candidates := make([]int, rng.Size())
	for t := range candidates {
		candidates[t] = t
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return curve.points[candidates[i]].Distance < curve.points[candidates[j]].Distance
	})

	ranked := make([]int, 0, limit)
	for _, t := range candidates {
		if len(ranked) == limit {
			break
		}
		overlaps := false
		for _, r := range ranked {
			if abs(t-r) < m {
				overlaps = true
				break
			}
		}
		if !overlaps {
			ranked = append(ranked, t)
		}
	}
	return ranked
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
