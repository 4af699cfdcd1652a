package worker

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"accounts/config"
	"accounts/internal/delivery/worker/handler"
	mockSvc "accounts/internal/mocks/service"

	"github.com/stretchr/testify/assert"
)

func TestWorkerRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}

	e := newEcho(ServerParams{
		Cfg:    cfg,
		Logger: logger,
		PushHandler: handler.NewMailPushHandler(handler.MailPushHandlerParams{
			Config: cfg,
			Logger: logger,
			Mailer: mockSvc.NewMockMailer(t),
		}),
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/push", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
