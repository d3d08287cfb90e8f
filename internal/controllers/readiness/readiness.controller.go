package readinessController

import (
	"context"
	"errors"
	"sync"
	"time"

	"clinicdesk/internal/logger"
	. "clinicdesk/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultDebounce = 5 * time.Second

var ErrNoActor = errors.New("no actor in session")

// RecordLookup is the read side of the four configuration domains. A missing
// record is found=false with a nil error.
type RecordLookup interface {
	GetProfile(ctx context.Context, actorID string) (*Profile, bool, error)
	GetClinic(ctx context.Context, actorID string) (*Clinic, bool, error)
	GetDoctor(ctx context.Context, actorID string) (*Doctor, bool, error)
	GetRegion(ctx context.Context, actorID string) (*RegionSelection, bool, error)
}

type StatusNotifier interface {
	ReadinessChanged(ctx context.Context, actorID string, status ReadinessStatus)
}

// ReadinessTracker caches whether an actor has completed the four
// configuration domains. Lookup failures never escape: any domain that cannot
// be verified reads as incomplete.
type ReadinessTracker struct {
	lookup   RecordLookup
	notifier StatusNotifier
	debounce time.Duration
	now      func() time.Time
	log      logger.Logger

	mu       sync.Mutex
	actorID  string
	status   ReadinessStatus
	issued   uint64
	applied  uint64
	resuming bool
}

func New(
	lookup RecordLookup,
	notifier StatusNotifier,
	debounce time.Duration,
) *ReadinessTracker {
	if debounce < 0 {
		debounce = DefaultDebounce
	}

	return &ReadinessTracker{
		lookup:   lookup,
		notifier: notifier,
		debounce: debounce,
		now:      time.Now,
		log:      logger.New("ReadinessTracker"),
	}
}

func (t *ReadinessTracker) Status() ReadinessStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *ReadinessTracker) ActorID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.actorID
}

// SetActor reacts to a change of the signed-in actor. A new concrete actor
// gets a fresh refresh; an empty actor clears the cached status.
func (t *ReadinessTracker) SetActor(ctx context.Context, actorID string) {
	t.mu.Lock()
	if actorID == t.actorID {
		t.mu.Unlock()
		return
	}
	t.switchActorLocked(actorID)
	t.mu.Unlock()

	if actorID == "" {
		return
	}

	_, _ = t.Refresh(ctx, actorID)
}

func (t *ReadinessTracker) switchActorLocked(actorID string) {
	t.actorID = actorID
	t.status = ReadinessStatus{}
	// results still in flight for the previous actor must not land
	t.applied = t.issued
}

// Refresh runs the four lookups concurrently and stores the combined result.
// Overlapping calls are allowed; only the most recently issued one is kept.
func (t *ReadinessTracker) Refresh(ctx context.Context, actorID string) (ReadinessStatus, error) {
	if actorID == "" {
		return ReadinessStatus{}, ErrNoActor
	}

	t.mu.Lock()
	if actorID != t.actorID {
		t.switchActorLocked(actorID)
	}
	t.issued++
	generation := t.issued
	t.mu.Unlock()

	status := t.check(ctx, actorID)

	t.mu.Lock()
	stored := generation > t.applied && actorID == t.actorID
	if stored {
		t.applied = generation
		t.status = status
	}
	t.mu.Unlock()

	if stored && t.notifier != nil {
		t.notifier.ReadinessChanged(ctx, actorID, status)
	}

	return status, nil
}

// Resume is the foreground-regained trigger. It refreshes only when more than
// the debounce window has passed since the last check and no resume-triggered
// refresh is already running.
func (t *ReadinessTracker) Resume(ctx context.Context) (bool, error) {
	log := t.log.Function("Resume")

	t.mu.Lock()
	actorID := t.actorID
	if actorID == "" {
		t.mu.Unlock()
		return false, nil
	}
	if t.resuming || t.now().Sub(t.status.LastChecked) <= t.debounce {
		t.mu.Unlock()
		log.Debug("resume inside debounce window", "actorID", actorID)
		return false, nil
	}
	t.resuming = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.resuming = false
		t.mu.Unlock()
	}()

	if _, err := t.Refresh(ctx, actorID); err != nil {
		return false, err
	}
	return true, nil
}

type domainCheck struct {
	name string
	run  func(ctx context.Context, actorID string) (bool, bool, error)
}

func (t *ReadinessTracker) domainChecks() []domainCheck {
	return []domainCheck{
		{name: "profile", run: func(ctx context.Context, actorID string) (bool, bool, error) {
			record, found, err := t.lookup.GetProfile(ctx, actorID)
			return record.IsComplete(), found, err
		}},
		{name: "clinic", run: func(ctx context.Context, actorID string) (bool, bool, error) {
			record, found, err := t.lookup.GetClinic(ctx, actorID)
			return record.IsComplete(), found, err
		}},
		{name: "doctor", run: func(ctx context.Context, actorID string) (bool, bool, error) {
			record, found, err := t.lookup.GetDoctor(ctx, actorID)
			return record.IsComplete(), found, err
		}},
		{name: "region", run: func(ctx context.Context, actorID string) (bool, bool, error) {
			record, found, err := t.lookup.GetRegion(ctx, actorID)
			return record.IsComplete(), found, err
		}},
	}
}

func (t *ReadinessTracker) check(ctx context.Context, actorID string) ReadinessStatus {
	log := t.log.Function("check")

	ctx, span := otel.Tracer("clinicdesk/readiness").Start(ctx, "readiness.refresh",
		trace.WithAttributes(attribute.String("actor.id", actorID)))
	defer span.End()

	checks := t.domainChecks()
	results := make([]bool, len(checks))

	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = t.runCheck(ctx, log, actorID, c)
		}()
	}
	wg.Wait()

	status := NewReadinessStatus(results[0], results[1], results[2], results[3], t.now())
	span.SetAttributes(attribute.Bool("readiness.all_complete", status.AllComplete))

	log.Debug("readiness checked", "actorID", actorID, "allComplete", status.AllComplete)
	return status
}

func (t *ReadinessTracker) runCheck(
	ctx context.Context,
	log logger.Logger,
	actorID string,
	c domainCheck,
) (complete bool) {
	defer func() {
		if r := recover(); r != nil {
			log.ErMsg("readiness lookup panicked", "domain", c.name, "actorID", actorID, "panic", r)
			complete = false
		}
	}()

	complete, found, err := c.run(ctx, actorID)
	switch {
	case err != nil:
		log.Warn("readiness lookup failed, treating as incomplete",
			"domain", c.name, "actorID", actorID, "error", err)
		return false
	case !found:
		log.Debug("readiness record not found", "domain", c.name, "actorID", actorID)
		return false
	}

	return complete
}
