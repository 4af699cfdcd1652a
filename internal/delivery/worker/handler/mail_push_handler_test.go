package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/service"
	"accounts/internal/infra/mail"
	mockSvc "accounts/internal/mocks/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
	"google.golang.org/api/idtoken"
)

func newTestHandler(t *testing.T, cfg *config.Config) (*MailPushHandler, *mockSvc.MockMailer) {
	t.Helper()

	mailer := mockSvc.NewMockMailer(t)
	h := NewMailPushHandler(MailPushHandlerParams{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Mailer: mailer,
	})

	return h, mailer
}

func pushBody(t *testing.T, msg *service.MailMessage, attrs map[string]string) string {
	t.Helper()

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var push mail.PushMessage
	push.Message.Data = base64.StdEncoding.EncodeToString(data)
	push.Message.MessageID = "m-1"
	push.Message.Attributes = attrs
	push.Subscription = "projects/local/subscriptions/mail-sub"

	body, err := json.Marshal(push)
	require.NoError(t, err)

	return string(body)
}

func serve(h *MailPushHandler, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	_ = h.HandlePush(c)

	return rec
}

func testMail() *service.MailMessage {
	return &service.MailMessage{
		RequestID: "payload-req",
		To:        "ana@example.com",
		Subject:   "Verify email for user app",
		HTML:      "<h1>Hello Ana Lee</h1>",
		Purpose:   "verify_email",
	}
}

func TestMailPushHandler_Delivers(t *testing.T) {
	h, mailer := newTestHandler(t, &config.Config{})

	mailer.EXPECT().
		Send(mock.Anything, testMail()).
		Run(func(ctx context.Context, _ *service.MailMessage) {
			assert.Equal(t, "attr-req", deliverycontext.GetRequestIDFromContext(ctx))
		}).
		Return(nil)

	rec := serve(h, pushBody(t, testMail(), map[string]string{constants.AttrRequestID: "attr-req"}), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMailPushHandler_FailureClassification(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		want    int
	}{
		{name: "temporary failure is retried", sendErr: errors.New("dial tcp: connection refused"), want: http.StatusServiceUnavailable},
		{name: "permanent rejection is acked", sendErr: &gomail.SendError{Reason: gomail.ErrSMTPRcptTo}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mailer := newTestHandler(t, &config.Config{})
			mailer.EXPECT().Send(mock.Anything, mock.Anything).Return(tt.sendErr)

			rec := serve(h, pushBody(t, testMail(), nil), nil)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMailPushHandler_Malformed(t *testing.T) {
	h, _ := newTestHandler(t, &config.Config{})

	var notBase64 mail.PushMessage
	notBase64.Message.Data = "%%%"
	body, err := json.Marshal(notBase64)
	require.NoError(t, err)

	noRecipient := testMail()
	noRecipient.To = ""

	for name, payload := range map[string]string{
		"invalid json":   `{"message":`,
		"invalid base64": string(body),
		"no recipient":   pushBody(t, noRecipient, nil),
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(h, payload, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMailPushHandler_PushAuth(t *testing.T) {
	cfg := &config.Config{
		Mail: &config.MailConfig{Provider: constants.MailProviderGoogle},
	}
	cfg.Env.Env = constants.EnvProduction

	h, mailer := newTestHandler(t, cfg)
	require.True(t, h.verifyPushAuth)

	var gotAudience string
	h.validateToken = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		gotAudience = audience
		switch token {
		case "good":
			return &idtoken.Payload{Issuer: "https://accounts.google.com", Claims: map[string]any{"email_verified": true}}, nil
		case "foreign":
			return &idtoken.Payload{Issuer: "https://evil.example.com"}, nil
		default:
			return nil, errors.New("bad signature")
		}
	}

	body := pushBody(t, testMail(), nil)

	assert.Equal(t, http.StatusUnauthorized, serve(h, body, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, body, map[string]string{"Authorization": "Bearer forged"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, body, map[string]string{"Authorization": "Bearer foreign"}).Code)

	mailer.EXPECT().Send(mock.Anything, mock.Anything).Return(nil).Once()
	assert.Equal(t, http.StatusOK, serve(h, body, map[string]string{"Authorization": "Bearer good"}).Code)
	assert.Equal(t, "http://example.com/push", gotAudience)
}

func TestNewMailPushHandler_VerificationSwitch(t *testing.T) {
	develop := &config.Config{Mail: &config.MailConfig{Provider: constants.MailProviderGoogle}}
	develop.Env.Env = constants.EnvDevelop
	h, _ := newTestHandler(t, develop)
	assert.False(t, h.verifyPushAuth)

	forced := &config.Config{Worker: &config.WorkerConfig{VerifyPushAuth: true, PushAudience: "https://worker.example.com/push"}}
	h, _ = newTestHandler(t, forced)
	assert.True(t, h.verifyPushAuth)
	assert.Equal(t, "https://worker.example.com/push", h.audience)
}
