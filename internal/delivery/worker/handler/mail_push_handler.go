// Package handler contains the mail worker's Pub/Sub push handler.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/service"
	"accounts/internal/infra/mail"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// tokenValidator matches idtoken.Validate.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// MailPushHandler delivers mail messages pushed by a Pub/Sub subscription.
type MailPushHandler struct {
	verifyPushAuth bool
	audience       string
	validateToken  tokenValidator
	mailer         service.Mailer
	logger         *slog.Logger
}

// MailPushHandlerParams holds dependencies for the MailPushHandler
type MailPushHandlerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Mailer service.Mailer
}

// NewMailPushHandler creates a new Pub/Sub push handler
func NewMailPushHandler(params MailPushHandlerParams) *MailPushHandler {
	cfg := params.Config

	// Google push requests carry an OIDC token outside develop; local pushes never do.
	verifyPushAuth := cfg.Mail != nil &&
		cfg.Mail.Provider == constants.MailProviderGoogle &&
		cfg.Env.Env != constants.EnvDevelop

	var audience string
	if cfg.Worker != nil {
		verifyPushAuth = verifyPushAuth || cfg.Worker.VerifyPushAuth
		audience = cfg.Worker.PushAudience
	}

	return &MailPushHandler{
		verifyPushAuth: verifyPushAuth,
		audience:       audience,
		validateToken:  idtoken.Validate,
		mailer:         params.Mailer,
		logger:         params.Logger,
	}
}

// HandlePush answers 400 for malformed messages, 503 for failures worth retrying
// and 200 once the message is delivered or permanently rejected.
func (h *MailPushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg mail.PushMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	msg, err := decodeMailMessage(&pushMsg)
	if err != nil {
		h.logger.Error("[Worker] Malformed mail message",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.Any("error", err),
		)

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := extractRequestID(ctx, &pushMsg, msg)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	if err := h.mailer.Send(ctx, msg); err != nil {
		permanent := mail.IsPermanent(err)
		reqLogger.Error("[Worker] Failed to deliver mail",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.String("purpose", msg.Purpose),
			slog.Bool("permanent", permanent),
			slog.Any("error", err),
		)
		if permanent {
			return c.NoContent(http.StatusOK)
		}

		return c.NoContent(http.StatusServiceUnavailable)
	}

	reqLogger.Info("[Worker] Mail delivered",
		slog.String("message_id", pushMsg.Message.MessageID),
		slog.String("purpose", msg.Purpose),
	)

	return c.NoContent(http.StatusOK)
}

func decodeMailMessage(pushMsg *mail.PushMessage) (*service.MailMessage, error) {
	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode message data")
	}

	var msg service.MailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(err, "failed to parse mail message")
	}
	if msg.To == "" {
		return nil, errors.New("mail message has no recipient")
	}

	return &msg, nil
}

// extractRequestID prefers message attributes, then the payload, then the request header.
func extractRequestID(ctx context.Context, pushMsg *mail.PushMessage, msg *service.MailMessage) string {
	if requestID := pushMsg.Message.Attributes[constants.AttrRequestID]; requestID != "" {
		return requestID
	}
	if msg.RequestID != "" {
		return msg.RequestID
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken checks the Google-signed OIDC token Pub/Sub attaches to push requests.
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func (h *MailPushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || token == "" {
		return errors.New("invalid authorization header format")
	}

	audience := h.audience
	if audience == "" {
		scheme := "https"
		if req.TLS == nil {
			scheme = "http"
		}
		audience = fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)
	}

	payload, err := h.validateToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
