package rewrite

import (
	"context"
	"fmt"
	"time"

	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/transform"
)

// DefaultStationTimeout and DefaultJobTimeout bound a station's and a
// job's wall-clock budget (spec §5, "Cancellation & timeouts").
const (
	DefaultStationTimeout = 30 * time.Second
	DefaultJobTimeout     = 120 * time.Second
)

// Delta is one labelled micro-edit a station made, for diff-style UI
// previews (spec §4.5, "Deltas").
type Delta struct {
	Label string
	Old   string
	New   string
}

// RewriteError reports a station failure or transform timeout (spec
// §4.7, "A RewriteError (station failure or transform timeout)").
type RewriteError struct {
	StationID string
	Err       error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("rewrite: station %s failed: %v", e.StationID, e.Err)
}
func (e *RewriteError) Unwrap() error { return e.Err }

// Job is a per-block rewrite task (spec §3, "RewriteJob").
type Job struct {
	BlockID     string
	Text        string
	Errors      []rules.Error
	TotalPasses int

	Transformer transform.Transformer
	Registry    *StationRegistry
	Tracker     *ProgressTracker

	StationTimeout time.Duration
	JobTimeout     time.Duration

	FinalText      string
	ErrorsFixed    int
	Deltas         []Delta
	PartialSuccess bool
}

// Run executes the job's passes over its applicable stations in order,
// observing ctx cancellation and the job/station timeouts. A station
// failure or timeout transitions that station to error and the job
// continues with the last-good text; the job finishes with
// PartialSuccess = true.
func (j *Job) Run(ctx context.Context) error {
	stationTimeout := j.StationTimeout
	if stationTimeout <= 0 {
		stationTimeout = DefaultStationTimeout
	}
	jobTimeout := j.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	totalPasses := j.TotalPasses
	if totalPasses <= 0 {
		totalPasses = 1
	}

	stations := j.Registry.ApplicableStations(j.Errors)
	stationIDs := make([]string, len(stations))
	for i, s := range stations {
		stationIDs[i] = s.ID
	}
	j.Tracker.Init(stationIDs, totalPasses)

	text := j.Text
	originalThreshold := thresholdOf(j.Errors)
	remaining := j.Errors

	for pass := 1; pass <= totalPasses; pass++ {
		j.Tracker.StartPass(pass, fmt.Sprintf("pass-%d", pass))

		for _, station := range stations {
			select {
			case <-ctx.Done():
				j.Tracker.Cancel(station.ID)
				j.PartialSuccess = true
				j.FinalText = text
				return ctx.Err()
			default:
			}

			applicable := filterByCategory(remaining, station.Applies)
			if len(applicable) == 0 {
				continue
			}

			if err := j.Tracker.StartStation(station.ID, station.ID, len(applicable)); err != nil {
				return err
			}

			newText, deltas, err := j.runStation(ctx, stationTimeout, station, text)
			if err != nil {
				j.Tracker.RecordError(station.ID, err)
				j.PartialSuccess = true
				continue // proceed on the last-good text (spec §4.7)
			}

			text = newText
			j.Deltas = append(j.Deltas, deltas...)
			j.ErrorsFixed += len(applicable)
			j.Tracker.CompleteStation(station.ID, len(applicable), deltas)
		}

		j.Tracker.CompletePass(pass)

		// Open Question #1 resolution: the second pass re-checks against
		// the ORIGINAL threshold, not a re-normalized one.
		remaining = stillAboveThreshold(remaining, originalThreshold)
		if len(remaining) == 0 {
			break
		}
	}

	j.FinalText = text
	j.Tracker.Complete(j.PartialSuccess)
	return nil
}

func (j *Job) runStation(ctx context.Context, timeout time.Duration, station Station, text string) (string, []Delta, error) {
	stationCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := j.Transformer.Transform(stationCtx, station.Instruction, text, transform.Constraints{
		PreserveCodeSpans:    true,
		PreserveHeadingLevel: true,
		MaxLengthRatio:       1.3,
	})
	if err != nil {
		return "", nil, &RewriteError{StationID: station.ID, Err: err}
	}

	deltas := []Delta{{Label: station.ID, Old: text, New: result.Text}}
	return result.Text, deltas, nil
}

func filterByCategory(errs []rules.Error, applies func(domain.Category) bool) []rules.Error {
	var out []rules.Error
	for _, e := range errs {
		if applies(e.Category) {
			out = append(out, e)
		}
	}
	return out
}

func thresholdOf(errs []rules.Error) float64 {
	if len(errs) == 0 {
		return 0
	}
	return errs[0].Provenance.UniversalThreshold
}

func stillAboveThreshold(errs []rules.Error, threshold float64) []rules.Error {
	var out []rules.Error
	for _, e := range errs {
		if e.Confidence >= threshold {
			out = append(out, e)
		}
	}
	return out
}
