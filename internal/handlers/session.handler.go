package handlers

import (
	"errors"

	"clinicdesk/internal/app"
	sessionController "clinicdesk/internal/controllers/session"
	"clinicdesk/internal/handlers/middleware"
	"clinicdesk/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	Handler
	sessions *sessionController.SessionController
}

func NewSessionHandler(app app.App, router fiber.Router) *SessionHandler {
	log := logger.New("handlers").File("session_handler")
	return &SessionHandler{
		sessions: app.SessionController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *SessionHandler) Register() {
	session := h.router.Group("/session", h.middleware.AuthRequired())
	session.Delete("/", h.signOut)
}

func (h *SessionHandler) signOut(c *fiber.Ctx) error {
	actorID := middleware.ActorID(c)
	if actorID == "" {
		return sessionError(c, h.log.Function("signOut"), sessionController.ErrNoActor)
	}

	discarded := h.sessions.Discard(actorID)
	return c.JSON(fiber.Map{"message": "success", "discarded": discarded})
}

// currentSession resolves the authenticated actor's session, creating it on
// first use.
func currentSession(
	c *fiber.Ctx,
	sessions *sessionController.SessionController,
) (*sessionController.Session, error) {
	return sessions.Get(c.Context(), middleware.ActorID(c))
}

func sessionError(c *fiber.Ctx, log logger.Logger, err error) error {
	if errors.Is(err, sessionController.ErrNoActor) {
		log.Warn("request without actor", "path", c.Path())
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "unauthorized", "error": err.Error()})
	}

	log.Er("failed to get session", err)
	return c.Status(fiber.StatusInternalServerError).
		JSON(fiber.Map{"message": "failed to get session", "error": err.Error()})
}
