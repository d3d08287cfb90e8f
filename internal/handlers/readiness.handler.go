package handlers

import (
	"clinicdesk/internal/app"
	sessionController "clinicdesk/internal/controllers/session"
	"clinicdesk/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type ReadinessHandler struct {
	Handler
	sessions *sessionController.SessionController
}

func NewReadinessHandler(app app.App, router fiber.Router) *ReadinessHandler {
	log := logger.New("handlers").File("readiness_handler")
	return &ReadinessHandler{
		sessions: app.SessionController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ReadinessHandler) Register() {
	readiness := h.router.Group("/readiness", h.middleware.AuthRequired())
	readiness.Get("/", h.getStatus)
	readiness.Post("/refresh", h.refresh)
	readiness.Post("/resume", h.resume)
}

func (h *ReadinessHandler) getStatus(c *fiber.Ctx) error {
	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, h.log.Function("getStatus"), err)
	}

	return c.JSON(fiber.Map{"message": "success", "readiness": session.Readiness.Status()})
}

func (h *ReadinessHandler) refresh(c *fiber.Ctx) error {
	log := h.log.Function("refresh")

	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, log, err)
	}

	status, err := session.Readiness.Refresh(c.Context(), session.ActorID)
	if err != nil {
		log.Er("failed to refresh readiness", err, "actorID", session.ActorID)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to refresh readiness", "error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "success", "readiness": status})
}

func (h *ReadinessHandler) resume(c *fiber.Ctx) error {
	log := h.log.Function("resume")

	session, err := currentSession(c, h.sessions)
	if err != nil {
		return sessionError(c, log, err)
	}

	refreshed, err := session.Readiness.Resume(c.Context())
	if err != nil {
		log.Er("failed to resume readiness", err, "actorID", session.ActorID)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to resume readiness", "error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message":   "success",
		"refreshed": refreshed,
		"readiness": session.Readiness.Status(),
	})
}
