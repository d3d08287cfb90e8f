package handlers

import (
	"errors"

	"clinicdesk/internal/app"
	emailSettingsController "clinicdesk/internal/controllers/emailSettings"
	sessionController "clinicdesk/internal/controllers/session"
	"clinicdesk/internal/logger"
	. "clinicdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

type EmailSettingsHandler struct {
	Handler
	sessions *sessionController.SessionController
}

func NewEmailSettingsHandler(app app.App, router fiber.Router) *EmailSettingsHandler {
	log := logger.New("handlers").File("emailSettings_handler")
	return &EmailSettingsHandler{
		sessions: app.SessionController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *EmailSettingsHandler) Register() {
	email := h.router.Group("/settings/email", h.middleware.AuthRequired())
	email.Get("/", h.getSettings)
	email.Post("/load", h.load)
	email.Patch("/draft", h.updateDraft)
	email.Put("/enabled", h.setEnabled)
	email.Post("/save", h.save)
	email.Post("/test", h.sendTest)
}

func (h *EmailSettingsHandler) getSettings(c *fiber.Ctx) error {
	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, h.log.Function("getSettings"), err)
	}

	return c.JSON(fiber.Map{"message": "success", "settings": session.EmailSettings.Snapshot()})
}

func (h *EmailSettingsHandler) load(c *fiber.Ctx) error {
	log := h.log.Function("load")

	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, log, err)
	}

	if err := session.EmailSettings.Load(c.Context(), session.ActorID); err != nil {
		return workflowError(c, log, "failed to load email settings", err)
	}

	return c.JSON(fiber.Map{"message": "success", "settings": session.EmailSettings.Snapshot()})
}

func (h *EmailSettingsHandler) updateDraft(c *fiber.Ctx) error {
	log := h.log.Function("updateDraft")

	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, log, err)
	}

	var request UpdateEmailDraftRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse draft request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse draft request"})
	}

	fields := make(map[emailSettingsController.Field]string, len(request.Fields))
	for name, value := range request.Fields {
		fields[emailSettingsController.Field(name)] = value
	}

	if err := session.EmailSettings.SetFields(fields); err != nil {
		return workflowError(c, log, "failed to update email settings draft", err)
	}

	return c.JSON(fiber.Map{"message": "success", "settings": session.EmailSettings.Snapshot()})
}

func (h *EmailSettingsHandler) setEnabled(c *fiber.Ctx) error {
	log := h.log.Function("setEnabled")

	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, log, err)
	}

	var request SetEmailEnabledRequest
	if err := c.BodyParser(&request); err != nil || request.Enabled == nil {
		log.Debug("invalid enabled request", "error", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "enabled is required"})
	}

	if err := session.EmailSettings.SetEnabled(*request.Enabled); err != nil {
		return workflowError(c, log, "failed to update email settings draft", err)
	}

	return c.JSON(fiber.Map{"message": "success", "settings": session.EmailSettings.Snapshot()})
}

func (h *EmailSettingsHandler) save(c *fiber.Ctx) error {
	log := h.log.Function("save")

	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, log, err)
	}

	saved, err := session.EmailSettings.Save(c.Context())
	if err != nil {
		return workflowError(c, log, "failed to save email settings", err)
	}

	return c.JSON(fiber.Map{"message": "success", "emailConfig": saved})
}

func (h *EmailSettingsHandler) sendTest(c *fiber.Ctx) error {
	log := h.log.Function("sendTest")

	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, log, err)
	}

	var request SendTestEmailRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse test email request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse test email request"})
	}

	result, err := session.EmailSettings.SendTest(c.Context(), request.TestRecipient)
	if err != nil {
		return workflowError(c, log, "failed to send test email", err)
	}

	return c.JSON(fiber.Map{"message": "success", "id": result.ID})
}

func workflowError(c *fiber.Ctx, log logger.Logger, message string, err error) error {
	var validationErr *emailSettingsController.ValidationError
	var persistenceErr *emailSettingsController.PersistenceError
	var deliveryErr *emailSettingsController.DeliveryError

	switch {
	case errors.As(err, &validationErr):
		log.Debug(message, "field", validationErr.Field, "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"message": message, "error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, emailSettingsController.ErrUnknownField):
		log.Debug(message, "error", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, emailSettingsController.ErrNotLoaded),
		errors.Is(err, emailSettingsController.ErrSaveInProgress):
		log.Debug(message, "error", err)
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, emailSettingsController.ErrNoActor):
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "unauthorized", "error": err.Error()})
	case errors.As(err, &deliveryErr):
		log.Warn(message, "error", err)
		return c.Status(fiber.StatusBadGateway).
			JSON(fiber.Map{"message": message, "error": deliveryErr.Message})
	case errors.Is(err, emailSettingsController.ErrProviderNotReady):
		log.Er(message, err)
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.As(err, &persistenceErr):
		log.Er(message, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": message, "error": persistenceErr.Error()})
	}

	log.Er(message, err)
	return c.Status(fiber.StatusInternalServerError).
		JSON(fiber.Map{"message": message, "error": err.Error()})
}
