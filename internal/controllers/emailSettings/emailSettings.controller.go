package emailSettingsController

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clinicdesk/internal/logger"
	. "clinicdesk/internal/models"
	"clinicdesk/internal/services"
)

type State string

const (
	StateUnloaded State = "unloaded"
	StateLoaded   State = "loaded"
	StateSaving   State = "saving"
)

type Field string

const (
	FieldProviderAPIKey  Field = "providerApiKey"
	FieldFromAddress     Field = "fromAddress"
	FieldFromDisplayName Field = "fromDisplayName"
)

const (
	TestEmailSubject = "clinicdesk email settings test"
	TestEmailHTML    = "<p>This is a test message from clinicdesk.</p><p>If you can read it, your email settings work.</p>"
	TestEmailText    = "This is a test message from clinicdesk. If you can read it, your email settings work."
)

type EmailConfigStore interface {
	GetByActorID(ctx context.Context, actorID string) (*EmailConfig, bool, error)
	Upsert(ctx context.Context, config *EmailConfig) error
}

type DeliveryProvider interface {
	Send(ctx context.Context, apiKey string, message services.EmailMessage) (services.DeliveryResult, error)
}

// Snapshot is a point-in-time copy of the workflow. Draft and Persisted never
// share memory with the workflow or with each other.
type Snapshot struct {
	State     State        `json:"state"`
	Sending   bool         `json:"sending"`
	Draft     EmailConfig  `json:"draft"`
	Persisted *EmailConfig `json:"persisted"`
}

// EmailConfigWorkflow holds one actor's editable email settings. The draft is
// what the user is editing; persisted is the last row read from or written to
// the store. Test sends always use the draft.
type EmailConfigWorkflow struct {
	store    EmailConfigStore
	provider DeliveryProvider
	now      func() time.Time
	log      logger.Logger

	mu        sync.Mutex
	state     State
	actorID   string
	draft     EmailConfig
	persisted *EmailConfig
	sending   int
}

func New(store EmailConfigStore, provider DeliveryProvider) *EmailConfigWorkflow {
	return &EmailConfigWorkflow{
		store:    store,
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.New("EmailConfigWorkflow"),
		state:    StateUnloaded,
	}
}

func (w *EmailConfigWorkflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := Snapshot{
		State:   w.state,
		Sending: w.sending > 0,
		Draft:   w.draft.Clone(),
	}
	if w.persisted != nil {
		persisted := w.persisted.Clone()
		snapshot.Persisted = &persisted
	}
	return snapshot
}

// Load replaces draft and persisted with the stored row, or with defaults when
// the actor has never saved. A failed read leaves the workflow as it was.
func (w *EmailConfigWorkflow) Load(ctx context.Context, actorID string) error {
	log := w.log.Function("Load")

	if actorID == "" {
		return ErrNoActor
	}

	stored, found, err := w.store.GetByActorID(ctx, actorID)
	if err != nil {
		log.Er("failed to load email settings", err, "actorID", actorID)
		return &PersistenceError{Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.actorID = actorID
	if found && stored != nil {
		persisted := stored.Clone()
		w.persisted = &persisted
		w.draft = stored.Clone()
	} else {
		w.persisted = nil
		w.draft = DefaultEmailConfig(actorID)
	}
	if w.state == StateUnloaded {
		w.state = StateLoaded
	}

	log.Debug("email settings loaded", "actorID", actorID, "found", found)
	return nil
}

func (w *EmailConfigWorkflow) SetField(field Field, value string) error {
	return w.SetFields(map[Field]string{field: value})
}

// SetFields applies every field or none of them.
func (w *EmailConfigWorkflow) SetFields(fields map[Field]string) error {
	for field := range fields {
		if !field.valid() {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateUnloaded {
		return ErrNotLoaded
	}

	for field, value := range fields {
		switch field {
		case FieldProviderAPIKey:
			w.draft.ProviderAPIKey = value
		case FieldFromAddress:
			w.draft.FromAddress = value
		case FieldFromDisplayName:
			if value == "" {
				w.draft.FromDisplayName = nil
				continue
			}
			name := value
			w.draft.FromDisplayName = &name
		}
	}
	return nil
}

func (w *EmailConfigWorkflow) SetEnabled(enabled bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateUnloaded {
		return ErrNotLoaded
	}
	w.draft.Enabled = enabled
	return nil
}

// Save validates an enabled draft and writes the whole row. A disabled draft
// is saved as is, empty credentials included.
func (w *EmailConfigWorkflow) Save(ctx context.Context) (EmailConfig, error) {
	log := w.log.Function("Save")

	w.mu.Lock()
	switch w.state {
	case StateUnloaded:
		w.mu.Unlock()
		return EmailConfig{}, ErrNotLoaded
	case StateSaving:
		w.mu.Unlock()
		return EmailConfig{}, ErrSaveInProgress
	}

	if err := validateForSave(w.draft); err != nil {
		w.mu.Unlock()
		log.Debug("email settings rejected", "actorID", w.actorID, "field", err.Field)
		return EmailConfig{}, err
	}

	row := w.draft.Clone()
	row.ActorID = w.actorID
	row.UpdatedAt = w.now()
	w.state = StateSaving
	w.mu.Unlock()

	err := w.store.Upsert(ctx, &row)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateLoaded

	if err != nil {
		log.Er("failed to save email settings", err, "actorID", row.ActorID)
		return EmailConfig{}, &PersistenceError{Err: err}
	}

	persisted := row.Clone()
	w.persisted = &persisted
	w.draft.UpdatedAt = row.UpdatedAt

	log.Info("email settings saved", "actorID", row.ActorID, "enabled", row.Enabled)
	return row.Clone(), nil
}

// SendTest delivers a fixed verification message using the current draft,
// saved or not. Failures are reported once and never retried.
func (w *EmailConfigWorkflow) SendTest(
	ctx context.Context,
	testRecipient string,
) (services.DeliveryResult, error) {
	log := w.log.Function("SendTest")

	if testRecipient == "" {
		return services.DeliveryResult{}, &ValidationError{
			Field:   "testRecipient",
			Message: "test recipient required",
		}
	}
	if w.provider == nil {
		return services.DeliveryResult{}, ErrProviderNotReady
	}

	w.mu.Lock()
	if w.state == StateUnloaded {
		w.mu.Unlock()
		return services.DeliveryResult{}, ErrNotLoaded
	}
	draft := w.draft.Clone()
	w.sending++
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.sending--
		w.mu.Unlock()
	}()

	message := services.EmailMessage{
		From:    draft.FromHeader(),
		To:      testRecipient,
		Subject: TestEmailSubject,
		HTML:    TestEmailHTML,
		Text:    TestEmailText,
	}

	result, err := w.provider.Send(ctx, draft.ProviderAPIKey, message)
	if err != nil {
		log.Warn("test email failed", "actorID", draft.ActorID, "error", err)
		return services.DeliveryResult{}, &DeliveryError{Message: deliveryMessage(err), Err: err}
	}

	log.Info("test email sent", "actorID", draft.ActorID, "id", result.ID)
	return result, nil
}

func validateForSave(draft EmailConfig) *ValidationError {
	if !draft.Enabled {
		return nil
	}
	if draft.ProviderAPIKey == "" {
		return &ValidationError{Field: string(FieldProviderAPIKey), Message: "providerApiKey required"}
	}
	if draft.FromAddress == "" {
		return &ValidationError{Field: string(FieldFromAddress), Message: "fromAddress required"}
	}
	return nil
}

func deliveryMessage(err error) string {
	var providerErr *services.ProviderError
	if errors.As(err, &providerErr) && providerErr.Message != "" {
		return providerErr.Message
	}
	return err.Error()
}

func (f Field) valid() bool {
	switch f {
	case FieldProviderAPIKey, FieldFromAddress, FieldFromDisplayName:
		return true
	}
	return false
}
