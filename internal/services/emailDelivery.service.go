package services

import (
	"context"
	"fmt"
	"strings"

	"clinicdesk/config"
	"clinicdesk/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EmailMessage is the payload accepted by the delivery provider.
type EmailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text,omitempty"`
}

type DeliveryResult struct {
	ID string `json:"id"`
}

// ProviderError is a rejection reported by the delivery provider itself, as
// opposed to a transport failure reaching it.
type ProviderError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *ProviderError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("email provider rejected request (%d %s): %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("email provider rejected request (%d): %s", e.StatusCode, e.Message)
}

// EmailDeliveryService talks to a Resend-compatible HTTP API. The API key is
// supplied per call so unsaved credentials can be exercised.
type EmailDeliveryService struct {
	client *resty.Client
	log    logger.Logger
}

func NewEmailDeliveryService(config config.Config) *EmailDeliveryService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(config.EmailProviderBaseURL, "/")).
		SetTimeout(config.EmailProviderTimeout()).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &EmailDeliveryService{
		client: client,
		log:    logger.New("EmailDeliveryService"),
	}
}

func (s *EmailDeliveryService) Send(
	ctx context.Context,
	apiKey string,
	message EmailMessage,
) (DeliveryResult, error) {
	log := s.log.Function("Send")

	ctx, span := otel.Tracer("clinicdesk/services").Start(ctx, "email.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("email.from", message.From)))
	defer span.End()

	var result DeliveryResult
	var providerErr ProviderError
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetBody(message).
		SetResult(&result).
		SetError(&providerErr).
		Post("/emails")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return DeliveryResult{}, log.Err("failed to reach email provider", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	if resp.IsError() {
		if providerErr.StatusCode == 0 {
			providerErr.StatusCode = resp.StatusCode()
		}
		if providerErr.Message == "" {
			providerErr.Message = strings.TrimSpace(resp.String())
		}
		if providerErr.Message == "" {
			providerErr.Message = resp.Status()
		}

		span.SetStatus(codes.Error, providerErr.Message)
		log.Warn("email provider rejected message",
			"status", providerErr.StatusCode, "name", providerErr.Name, "message", providerErr.Message)
		return DeliveryResult{}, &providerErr
	}

	log.Info("email accepted by provider", "id", result.ID)
	return result, nil
}
