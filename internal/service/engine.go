package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"readiness/internal/analysis"
	"readiness/internal/store"
)

// EngineState is the state of the recompute state machine
type EngineState int32

const (
	StateIdle EngineState = iota
	StateProcessing
)

func (s EngineState) String() string {
	if s == StateProcessing {
		return "processing"
	}
	return "idle"
}

// PassMode distinguishes full recomputes from incremental updates
type PassMode string

const (
	ModeFull        PassMode = "full"
	ModeIncremental PassMode = "incremental"
)

// PassProgress reports progress during a pass
type PassProgress struct {
	Mode  PassMode
	Phase string // "fetch", "aggregate", "fold", "persist"
	Days  int
}

// PassResult summarizes a completed pass
type PassResult struct {
	Mode              PassMode
	From              string // first day written
	To                string // last day written
	PrimaryFetched    int
	SecondaryFetched  int
	SamplesFetched    int
	WorkoutsWritten   int
	Suppressed        int
	DaysWritten       int
	NoChanges         bool  // incremental update found nothing new
	SecondaryDegraded error // non-nil when the secondary source failed
}

// EngineConfig wires the engine's collaborators
type EngineConfig struct {
	Primary    PrimarySource
	Secondary  SecondarySource  // optional
	Physiology PhysiologySource // optional
	Sleep      SleepSource      // optional
	Settings   SettingsSource
	Store      Persistence

	Logger      *slog.Logger
	HistoryDays int
	Location    *time.Location
	Now         func() time.Time
	Progress    func(PassProgress) // optional
}

// Engine runs full and incremental readiness passes. At most one pass runs
// at a time; a concurrent caller gets ErrAlreadyProcessing immediately.
type Engine struct {
	primary    PrimarySource
	secondary  SecondarySource
	physiology PhysiologySource
	sleep      SleepSource
	settings   SettingsSource
	store      Persistence

	logger      *slog.Logger
	historyDays int
	loc         *time.Location
	now         func() time.Time
	progress    func(PassProgress)
	modifier    analysis.PhysiologyModifier

	state atomic.Int32

	mu      sync.Mutex
	lastErr error
}

// NewEngine creates an engine in the Idle state
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		primary:     cfg.Primary,
		secondary:   cfg.Secondary,
		physiology:  cfg.Physiology,
		sleep:       cfg.Sleep,
		settings:    cfg.Settings,
		store:       cfg.Store,
		logger:      cfg.Logger,
		historyDays: cfg.HistoryDays,
		loc:         cfg.Location,
		now:         cfg.Now,
		progress:    cfg.Progress,
		modifier:    analysis.DefaultPhysiologyModifier(),
	}
	if e.logger == nil {
		e.logger = discardLogger()
	}
	if e.historyDays <= 0 {
		e.historyDays = DefaultHistoryDays
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// State returns the current state
func (e *Engine) State() EngineState {
	return EngineState(e.state.Load())
}

// LastError returns the error of the most recent pass, nil after a success
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Engine) begin() error {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateProcessing)) {
		return ErrAlreadyProcessing
	}
	return nil
}

func (e *Engine) finish(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	e.state.Store(int32(StateIdle))
}

// RecomputeAll rebuilds every daily aggregate in the history window
func (e *Engine) RecomputeAll(ctx context.Context) (result *PassResult, err error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer func() { e.finish(err) }()

	if err := e.validate(); err != nil {
		return nil, err
	}
	return e.recomputeAll(ctx)
}

// IncrementalUpdate folds in data that arrived since the last pass. With no
// cursor it runs a full recompute; with nothing new it writes nothing.
func (e *Engine) IncrementalUpdate(ctx context.Context) (result *PassResult, err error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer func() { e.finish(err) }()

	if err := e.validate(); err != nil {
		return nil, err
	}
	cursor, ok, err := e.store.SyncCursor()
	if err != nil {
		return nil, fmt.Errorf("%w: reading cursor: %w", ErrPersistence, err)
	}
	if !ok {
		e.logger.Info("no sync cursor, running full recompute")
		return e.recomputeAll(ctx)
	}
	return e.incremental(ctx, cursor)
}

// fetchPlan describes one concurrent fetch stage
type fetchPlan struct {
	primary      func(ctx context.Context) ([]PrimaryWorkout, error)
	workoutsFrom time.Time
	workoutsTo   time.Time
	samplesFrom  time.Time
	samplesTo    time.Time
	sleepFrom    time.Time
	sleepTo      time.Time
	skipWorkouts bool
}

type fetched struct {
	primary      []PrimaryWorkout
	secondary    []SecondaryWorkout
	hrv, rhr     []analysis.Sample
	sleep        []analysis.SleepSample
	secondaryErr error
}

func (f *fetched) empty() bool {
	return len(f.primary) == 0 && len(f.secondary) == 0 &&
		len(f.hrv) == 0 && len(f.rhr) == 0 && len(f.sleep) == 0
}

func (f *fetched) raw() []RawWorkout {
	raw := make([]RawWorkout, 0, len(f.primary)+len(f.secondary))
	for _, w := range f.primary {
		raw = append(raw, w)
	}
	for _, w := range f.secondary {
		raw = append(raw, w)
	}
	return raw
}

// fetch runs the independent source fetches concurrently. A primary failure
// cancels the stage; a secondary failure degrades to no secondary workouts.
func (e *Engine) fetch(ctx context.Context, plan fetchPlan) (*fetched, error) {
	var out fetched
	g, gctx := errgroup.WithContext(ctx)

	if !plan.skipWorkouts {
		g.Go(func() error {
			workouts, err := plan.primary(gctx)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrPrimarySourceFetch, err)
			}
			out.primary = workouts
			return nil
		})

		if e.secondary != nil {
			g.Go(func() error {
				workouts, err := e.secondary.WorkoutsBetween(gctx, plan.workoutsFrom, plan.workoutsTo)
				if err != nil {
					out.secondaryErr = fmt.Errorf("%w: %w", ErrSecondarySourceFetch, err)
					e.logger.Warn("secondary source unavailable, continuing without it", "error", err)
					return nil
				}
				out.secondary = workouts
				return nil
			})
		}
	}

	if e.physiology != nil {
		g.Go(func() error {
			hrv, rhr, err := e.physiology.PhysiologyBetween(gctx, plan.samplesFrom, plan.samplesTo)
			if err != nil {
				return fmt.Errorf("fetching physiology samples: %w", err)
			}
			out.hrv, out.rhr = hrv, rhr
			return nil
		})
	}

	if e.sleep != nil {
		g.Go(func() error {
			samples, err := e.sleep.SleepBetween(gctx, plan.sleepFrom, plan.sleepTo)
			if err != nil {
				return fmt.Errorf("fetching sleep samples: %w", err)
			}
			out.sleep = samples
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// thresholds loads settings and checks the ones the engine cannot do without
func (e *Engine) thresholds(ctx context.Context) (analysis.Thresholds, error) {
	if e.settings == nil {
		return analysis.Thresholds{}, fmt.Errorf("%w: no settings source", ErrConfigurationIncomplete)
	}
	th, err := e.settings.Thresholds(ctx)
	if err != nil {
		return analysis.Thresholds{}, fmt.Errorf("%w: %w", ErrConfigurationIncomplete, err)
	}
	if th.MaxHR <= 0 {
		return analysis.Thresholds{}, fmt.Errorf("%w: max heart rate is not set", ErrConfigurationIncomplete)
	}
	if th.RestingHR >= th.MaxHR {
		return analysis.Thresholds{}, fmt.Errorf("%w: resting heart rate %.0f is not below max %.0f",
			ErrConfigurationIncomplete, th.RestingHR, th.MaxHR)
	}
	return th, nil
}

func (e *Engine) report(p PassProgress) {
	if e.progress != nil {
		e.progress(p)
	}
}

func (e *Engine) validate() error {
	if e.primary == nil || e.store == nil {
		return fmt.Errorf("%w: primary source and store are required", ErrConfigurationIncomplete)
	}
	return nil
}

func (e *Engine) recomputeAll(ctx context.Context) (*PassResult, error) {
	th, err := e.thresholds(ctx)
	if err != nil {
		return nil, err
	}

	passStart := e.now()
	today := analysis.StartOfDay(passStart, e.loc)
	start := today.AddDate(0, 0, -(e.historyDays - 1))
	end := today.AddDate(0, 0, 1)

	e.report(PassProgress{Mode: ModeFull, Phase: "fetch"})
	data, err := e.fetch(ctx, fetchPlan{
		primary: func(ctx context.Context) ([]PrimaryWorkout, error) {
			return e.primary.WorkoutsBetween(ctx, start, end)
		},
		workoutsFrom: start,
		workoutsTo:   end,
		samplesFrom:  start.AddDate(0, 0, -e.modifier.LookbackDays()),
		samplesTo:    end,
		sleepFrom:    start.Add(-sleepLookback),
		sleepTo:      end,
	})
	if err != nil {
		return nil, err
	}

	e.report(PassProgress{Mode: ModeFull, Phase: "aggregate"})
	records := inRange(NewAggregator(th, e.loc).Aggregate(data.raw(), nil), start, today)

	days := analysis.DaysBetween(start, today)
	e.report(PassProgress{Mode: ModeFull, Phase: "fold", Days: len(days)})
	aggs := e.buildAggregates(days, records, data, analysis.LoadState{}, nil, 0, passStart)

	e.report(PassProgress{Mode: ModeFull, Phase: "persist", Days: len(aggs)})
	batch := store.PassBatch{
		ReplaceFrom: analysis.DayKey(start),
		Workouts:    records,
		Aggregates:  aggs,
		Cursor:      passStart,
	}
	if err := e.store.CommitPass(ctx, batch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	result := e.result(ModeFull, data, records, aggs)
	e.logger.Info("full recompute complete",
		"from", result.From, "to", result.To,
		"workouts", result.WorkoutsWritten, "suppressed", result.Suppressed,
		"secondary_degraded", result.SecondaryDegraded != nil)
	return result, nil
}

func (e *Engine) incremental(ctx context.Context, cursor time.Time) (*PassResult, error) {
	th, err := e.thresholds(ctx)
	if err != nil {
		return nil, err
	}

	passStart := e.now()
	today := analysis.StartOfDay(passStart, e.loc)

	// Activities can reach the secondary source well after they start
	secondaryFrom := cursor.Add(-secondaryUploadLag)

	e.report(PassProgress{Mode: ModeIncremental, Phase: "fetch"})
	fresh, err := e.fetch(ctx, fetchPlan{
		primary: func(ctx context.Context) ([]PrimaryWorkout, error) {
			return e.primary.WorkoutsSince(ctx, cursor)
		},
		workoutsFrom: secondaryFrom,
		workoutsTo:   passStart,
		samplesFrom:  cursor,
		samplesTo:    passStart,
		sleepFrom:    cursor,
		sleepTo:      passStart,
	})
	if err != nil {
		return nil, err
	}
	if len(fresh.secondary) > 0 {
		known, err := e.store.Workouts(analysis.DayKey(secondaryFrom.In(e.loc)), analysis.DayKey(today))
		if err != nil {
			return nil, fmt.Errorf("%w: loading stored workouts: %w", ErrPersistence, err)
		}
		fresh.secondary = unseenSecondary(fresh.secondary, known)
	}
	if fresh.empty() {
		e.logger.Debug("incremental update found nothing new", "cursor", cursor)
		return &PassResult{Mode: ModeIncremental, NoChanges: true, SecondaryDegraded: fresh.secondaryErr}, nil
	}

	latest, err := e.store.RecentDailyAggregates(1)
	if err != nil {
		return nil, fmt.Errorf("%w: loading latest aggregate: %w", ErrPersistence, err)
	}
	if len(latest) == 0 {
		e.logger.Info("no stored aggregates, running full recompute")
		return e.recomputeAll(ctx)
	}
	lastDay, err := analysis.ParseDay(latest[0].Day, e.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing stored day %q: %w", ErrPersistence, latest[0].Day, err)
	}
	windowStart := today.AddDate(0, 0, -(e.historyDays - 1))
	if lastDay.Before(windowStart) {
		e.logger.Info("stored aggregates end before the history window, running full recompute",
			"last_day", latest[0].Day)
		return e.recomputeAll(ctx)
	}

	// Refold from the first day touched by new data or the first day
	// without an aggregate, whichever comes first
	start := e.earliestAffected(fresh, today)
	if gap := lastDay.AddDate(0, 0, 1); gap.Before(start) {
		start = gap
	}

	// Stored workouts of the day before take part in dedupe; when a fresh
	// workout pairs with one of them that day is refolded too
	aggregator := NewAggregator(th, e.loc)
	scored := make([]store.WorkoutRecord, 0, len(fresh.primary)+len(fresh.secondary))
	for _, w := range fresh.raw() {
		scored = append(scored, aggregator.Score(w))
	}
	var stored []store.WorkoutRecord
	for {
		stored, err = e.store.Workouts(analysis.DayKey(start.AddDate(0, 0, -1)), analysis.DayKey(today))
		if err != nil {
			return nil, fmt.Errorf("%w: loading stored workouts: %w", ErrPersistence, err)
		}
		if !pairsBefore(scored, stored, analysis.DayKey(start)) {
			break
		}
		start = start.AddDate(0, 0, -1)
	}

	// Seed the fold from the stored state of the day before the range
	seed := analysis.LoadState{}
	var previousAdjustment float64
	prev, err := e.store.DailyAggregate(analysis.DayKey(start.AddDate(0, 0, -1)))
	switch {
	case err == nil:
		seed = analysis.LoadState{Chronic: prev.Chronic, Acute: prev.Acute}
		previousAdjustment = prev.PhysiologyAdjustment
	case errors.Is(err, store.ErrAggregateNotFound):
		e.logger.Debug("no aggregate before affected range, seeding from zero", "start", analysis.DayKey(start))
	default:
		return nil, fmt.Errorf("%w: loading seed aggregate: %w", ErrPersistence, err)
	}

	history, err := e.chronicHistory(start)
	if err != nil {
		return nil, err
	}

	// Physiology baselines and sleep need the whole affected range, not
	// only the samples that arrived since the cursor
	end := today.AddDate(0, 0, 1)
	ranged, err := e.fetch(ctx, fetchPlan{
		skipWorkouts: true,
		samplesFrom:  start.AddDate(0, 0, -e.modifier.LookbackDays()),
		samplesTo:    end,
		sleepFrom:    start.Add(-sleepLookback),
		sleepTo:      end,
	})
	if err != nil {
		return nil, err
	}
	ranged.primary, ranged.secondary, ranged.secondaryErr = fresh.primary, fresh.secondary, fresh.secondaryErr

	e.report(PassProgress{Mode: ModeIncremental, Phase: "aggregate"})
	records := inRange(aggregator.Aggregate(ranged.raw(), stored), start, today)

	days := analysis.DaysBetween(start, today)
	e.report(PassProgress{Mode: ModeIncremental, Phase: "fold", Days: len(days)})
	aggs := e.buildAggregates(days, records, ranged, seed, history, previousAdjustment, passStart)

	e.report(PassProgress{Mode: ModeIncremental, Phase: "persist", Days: len(aggs)})
	batch := store.PassBatch{
		ReplaceFrom: analysis.DayKey(start),
		Workouts:    records,
		Aggregates:  aggs,
		Cursor:      passStart,
	}
	if err := e.store.CommitPass(ctx, batch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	result := e.result(ModeIncremental, fresh, records, aggs)
	result.SamplesFetched = len(fresh.hrv) + len(fresh.rhr) + len(fresh.sleep)
	e.logger.Info("incremental update complete",
		"from", result.From, "to", result.To,
		"new_workouts", result.PrimaryFetched+result.SecondaryFetched,
		"new_samples", result.SamplesFetched)
	return result, nil
}

// unseenSecondary drops secondary workouts already stored unchanged
func unseenSecondary(workouts []SecondaryWorkout, stored []store.WorkoutRecord) []SecondaryWorkout {
	known := make(map[string]store.WorkoutRecord)
	for _, r := range stored {
		if r.Origin == store.SourceSecondary {
			known[r.ID] = r
		}
	}

	var out []SecondaryWorkout
	for _, w := range workouts {
		r, ok := known[w.ID]
		if ok && r.StartTime.Equal(w.StartTime) && r.Duration == w.Duration && r.Sport == w.Sport {
			continue
		}
		out = append(out, w)
	}
	return out
}

// pairsBefore reports whether a fresh record duplicates a stored record
// whose day is before day
func pairsBefore(fresh, stored []store.WorkoutRecord, day string) bool {
	for _, s := range stored {
		if s.Day >= day {
			continue
		}
		for _, f := range fresh {
			if f.Origin != s.Origin && IsDuplicate(f, s) {
				return true
			}
		}
	}
	return false
}

// earliestAffected is the first local day touched by newly fetched data,
// never later than today
func (e *Engine) earliestAffected(f *fetched, today time.Time) time.Time {
	earliest := today
	consider := func(t time.Time) {
		if d := analysis.StartOfDay(t, e.loc); d.Before(earliest) {
			earliest = d
		}
	}
	for _, w := range f.primary {
		consider(w.StartTime)
	}
	for _, w := range f.secondary {
		consider(w.StartTime)
	}
	for _, s := range f.hrv {
		consider(s.Time)
	}
	for _, s := range f.rhr {
		consider(s.Time)
	}
	for _, s := range f.sleep {
		consider(s.End)
	}
	return earliest
}

// chronicHistory returns the stored chronic values of the consecutive days
// right before start, oldest first, for ramp-rate continuity
func (e *Engine) chronicHistory(start time.Time) ([]float64, error) {
	from := start.AddDate(0, 0, -analysis.RampWindowDays)
	aggs, err := e.store.DailyAggregatesBetween(analysis.DayKey(from), analysis.DayKey(start.AddDate(0, 0, -1)))
	if err != nil {
		return nil, fmt.Errorf("%w: loading chronic history: %w", ErrPersistence, err)
	}

	byDay := make(map[string]float64, len(aggs))
	for _, a := range aggs {
		byDay[a.Day] = a.Chronic
	}

	var history []float64
	for d := start.AddDate(0, 0, -1); !d.Before(from); d = d.AddDate(0, 0, -1) {
		chronic, ok := byDay[analysis.DayKey(d)]
		if !ok {
			break
		}
		history = append([]float64{chronic}, history...)
	}
	return history, nil
}

// buildAggregates folds per-day stress and derives each day's aggregate
func (e *Engine) buildAggregates(days []time.Time, records []store.WorkoutRecord, data *fetched,
	seed analysis.LoadState, history []float64, previousAdjustment float64, computedAt time.Time) []store.DailyAggregate {
	if len(days) == 0 {
		return nil
	}

	totals, counts := DailyTotals(records)
	stress := make([]float64, len(days))
	for i, d := range days {
		stress[i] = totals[analysis.DayKey(d)]
	}

	fold := analysis.FoldLoad(days[0], stress, seed, history)
	physiology := e.modifier.Evaluate(days, data.hrv, data.rhr, previousAdjustment)
	nights := analysis.AnalyzeSleep(data.sleep, e.loc)

	aggs := make([]store.DailyAggregate, len(days))
	for i, m := range fold {
		key := analysis.DayKey(m.Date)
		pd := physiology[i]

		agg := store.DailyAggregate{
			Day:                  key,
			TotalTSS:             m.TSS,
			Chronic:              m.Chronic,
			Acute:                m.Acute,
			Score:                analysis.ReadinessScore(m.Balance(), pd.Adjustment),
			RampRate:             m.RampRate,
			WorkoutCount:         counts[key],
			AvgHRV:               pd.AvgHRV,
			AvgRHR:               pd.AvgRHR,
			HRVAdjustment:        pd.HRVAdjustment,
			RHRAdjustment:        pd.RHRAdjustment,
			PhysiologyAdjustment: pd.Adjustment,
			IllnessLikelihood:    pd.Illness.Likelihood(),
			ComputedAt:           computedAt,
		}
		if night, ok := nights[key]; ok {
			score := night.Score
			agg.SleepDuration = night.Session.Asleep
			agg.SleepScore = &score
			agg.DeepSleepDuration = night.Session.Deep
		}
		aggs[i] = agg
	}
	return aggs
}

func (e *Engine) result(mode PassMode, data *fetched, records []store.WorkoutRecord, aggs []store.DailyAggregate) *PassResult {
	r := &PassResult{
		Mode:              mode,
		PrimaryFetched:    len(data.primary),
		SecondaryFetched:  len(data.secondary),
		SamplesFetched:    len(data.hrv) + len(data.rhr) + len(data.sleep),
		WorkoutsWritten:   len(records),
		DaysWritten:       len(aggs),
		SecondaryDegraded: data.secondaryErr,
	}
	for _, rec := range records {
		if rec.Suppressed {
			r.Suppressed++
		}
	}
	if len(aggs) > 0 {
		r.From = aggs[0].Day
		r.To = aggs[len(aggs)-1].Day
	}
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// inRange keeps records whose day falls within [start, end]
func inRange(records []store.WorkoutRecord, start, end time.Time) []store.WorkoutRecord {
	from, to := analysis.DayKey(start), analysis.DayKey(end)
	out := records[:0]
	for _, r := range records {
		if r.Day >= from && r.Day <= to {
			out = append(out, r)
		}
	}
	return out
}
