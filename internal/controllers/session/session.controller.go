package sessionController

import (
	"context"
	"errors"
	"sync"
	"time"

	emailSettingsController "clinicdesk/internal/controllers/emailSettings"
	readinessController "clinicdesk/internal/controllers/readiness"
	"clinicdesk/internal/logger"
)

var ErrNoActor = errors.New("no actor in session")

// Session is everything the service keeps for one signed-in actor.
type Session struct {
	ActorID       string
	Readiness     *readinessController.ReadinessTracker
	EmailSettings *emailSettingsController.EmailConfigWorkflow
	CreatedAt     time.Time
}

type SessionController struct {
	lookup   readinessController.RecordLookup
	notifier readinessController.StatusNotifier
	store    emailSettingsController.EmailConfigStore
	provider emailSettingsController.DeliveryProvider
	debounce time.Duration
	log      logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func New(
	lookup readinessController.RecordLookup,
	notifier readinessController.StatusNotifier,
	store emailSettingsController.EmailConfigStore,
	provider emailSettingsController.DeliveryProvider,
	debounce time.Duration,
) *SessionController {
	return &SessionController{
		lookup:   lookup,
		notifier: notifier,
		store:    store,
		provider: provider,
		debounce: debounce,
		log:      logger.New("SessionController"),
		sessions: make(map[string]*Session),
	}
}

// Get returns the actor's session, creating it on first use. Creation is the
// moment the actor becomes known, so it runs the first readiness refresh.
func (c *SessionController) Get(ctx context.Context, actorID string) (*Session, error) {
	log := c.log.Function("Get")

	if actorID == "" {
		return nil, ErrNoActor
	}

	c.mu.Lock()
	if session, ok := c.sessions[actorID]; ok {
		c.mu.Unlock()
		return session, nil
	}

	session := &Session{
		ActorID:       actorID,
		Readiness:     readinessController.New(c.lookup, c.notifier, c.debounce),
		EmailSettings: emailSettingsController.New(c.store, c.provider),
		CreatedAt:     time.Now().UTC(),
	}
	c.sessions[actorID] = session
	c.mu.Unlock()

	log.Info("session started", "actorID", actorID)
	session.Readiness.SetActor(ctx, actorID)

	return session, nil
}

// Find returns an existing session without creating one.
func (c *SessionController) Find(actorID string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, ok := c.sessions[actorID]
	return session, ok
}

// Discard drops the actor's draft and cached readiness.
func (c *SessionController) Discard(actorID string) bool {
	c.mu.Lock()
	session, ok := c.sessions[actorID]
	delete(c.sessions, actorID)
	c.mu.Unlock()

	if !ok {
		return false
	}

	session.Readiness.SetActor(context.Background(), "")
	c.log.Function("Discard").Info("session discarded", "actorID", actorID)
	return true
}

func (c *SessionController) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
