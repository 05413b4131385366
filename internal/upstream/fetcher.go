package upstream

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/earthsurvivors/earthsurvivors/internal/character"
	systemclock "github.com/earthsurvivors/earthsurvivors/internal/clock/system"
	uuidgen "github.com/earthsurvivors/earthsurvivors/internal/id/uuid"
	"github.com/earthsurvivors/earthsurvivors/internal/progress"
)

// Config holds the settings for a fetch run. It is decoupled from Viper so
// the fetcher stays testable on its own.
type Config struct {
	// BaseURL is the upstream character listing endpoint.
	BaseURL string
	// MaxPages caps a single run; zero or negative means no cap.
	MaxPages int
}

// Fetcher runs the complete fetch pipeline: it pages through the upstream
// listing and keeps the records that pass the survivor filter. Runs fail
// fast; the first page error aborts the run with a *FetchError and no
// partial result.
type Fetcher struct {
	pages   PageFetcher
	ids     IDGenerator
	clock   Clock
	emitter progress.Emitter
	cfg     Config
	logger  *zap.Logger
}

// NewFetcher constructs a Fetcher. The emitter may be nil when no progress
// reporting is wanted.
func NewFetcher(
	pages PageFetcher,
	ids IDGenerator,
	clk Clock,
	emitter progress.Emitter,
	cfg Config,
	logger *zap.Logger,
) *Fetcher {
	if ids == nil {
		ids = uuidgen.NewGenerator()
	}
	if clk == nil {
		clk = systemclock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		pages:   pages,
		ids:     ids,
		clock:   clk,
		emitter: emitter,
		cfg:     cfg,
		logger:  logger,
	}
}

// FetchFiltered pages through the upstream listing and returns the surviving
// characters in upstream order. Zero matches yields an empty, non-nil slice.
func (f *Fetcher) FetchFiltered(ctx context.Context) ([]character.Record, error) {
	runID, err := f.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("assign run id: %w", err)
	}
	start, err := startURL(f.cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	startedAt := f.clock.Now()
	f.emit(progress.Event{RunID: runID, TS: startedAt, Stage: progress.StageRunStart, URL: start})
	f.logger.Info("fetch run started",
		zap.String("run_id", runID),
		zap.String("url", start),
	)

	pager := NewPager(f.pages, start, f.cfg.MaxPages)
	survivors := make([]character.Record, 0)
	pages := 0
	seen := 0

	for {
		res, ok, err := pager.Next(ctx)
		if err != nil {
			f.emit(progress.Event{
				RunID: runID,
				TS:    f.clock.Now(),
				Stage: progress.StageRunError,
				Dur:   f.clock.Now().Sub(startedAt),
				Note:  err.Error(),
			})
			f.logger.Error("fetch run failed",
				zap.String("run_id", runID),
				zap.Int("pages_fetched", pages),
				zap.Error(err),
			)
			return nil, err
		}
		if !ok {
			break
		}

		kept := character.FilterSurvivors(res.Records)
		survivors = append(survivors, kept...)
		pages = res.Index
		seen += len(res.Records)

		f.emit(progress.Event{
			RunID:       runID,
			TS:          f.clock.Now(),
			Stage:       progress.StagePage,
			Page:        res.Index,
			URL:         res.URL,
			Seen:        len(res.Records),
			Kept:        len(kept),
			Bytes:       int64(res.Bytes),
			StatusClass: progress.ClassifyStatus(res.StatusCode),
			Dur:         res.Duration,
		})
	}

	dur := f.clock.Now().Sub(startedAt)
	f.emit(progress.Event{
		RunID: runID,
		TS:    f.clock.Now(),
		Stage: progress.StageRunDone,
		Seen:  seen,
		Kept:  len(survivors),
		Dur:   dur,
	})
	f.logger.Info("fetch run completed",
		zap.String("run_id", runID),
		zap.Int("pages", pages),
		zap.Int("seen", seen),
		zap.Int("kept", len(survivors)),
		zap.Duration("dur", dur),
	)
	return survivors, nil
}

func (f *Fetcher) emit(evt progress.Event) {
	if f.emitter == nil {
		return
	}
	f.emitter.Emit(evt)
}

// startURL appends the server-side prefilter to the base URL. The upstream
// API narrows by species and status; origin filtering stays local because the
// API cannot express substring matches.
func startURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("species", character.SpeciesHuman)
	q.Set("status", character.StatusAlive)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
