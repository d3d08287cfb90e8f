package middleware

import (
	"errors"
	"strings"
	"time"

	"clinicdesk/config"
	"clinicdesk/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const ActorIDKey = "actorID"

var errMissingToken = errors.New("missing bearer token")

type Middleware struct {
	secret []byte
	log    logger.Logger
}

func New(config config.Config) Middleware {
	return Middleware{
		secret: []byte(config.AuthJWTSecret),
		log:    logger.New("middleware"),
	}
}

// AuthRequired verifies the HS256 bearer token and stores its subject as the
// actor id. Websocket upgrades may pass the token as ?token= instead.
func (m Middleware) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := m.log.Function("AuthRequired")

		actorID, err := m.ParseToken(tokenFromRequest(c))
		if err != nil {
			log.Debug("rejected request", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "unauthorized", "error": err.Error()})
		}

		c.Locals(ActorIDKey, actorID)
		return c.Next()
	}
}

// ParseToken validates a signed token and returns its subject.
func (m Middleware) ParseToken(raw string) (string, error) {
	if raw == "" {
		return "", errMissingToken
	}
	if len(m.secret) == 0 {
		return "", errors.New("token verification is not configured")
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("token has no subject")
	}

	return subject, nil
}

// IssueToken signs a token for actorID. The service never issues tokens to end
// users; this exists for seeding and local development.
func (m Middleware) IssueToken(actorID string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("token signing is not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   actorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func ActorID(c *fiber.Ctx) string {
	actorID, _ := c.Locals(ActorIDKey).(string)
	return actorID
}

func tokenFromRequest(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}
