// Package mail holds the transports that deliver account emails.
package mail

import (
	"context"
	"log/slog"

	"accounts/config"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/service"
	"accounts/internal/infra/qrcode"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// logMailer only logs outgoing mail. It is used when no provider is configured.
type logMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that writes messages to the log instead of sending them.
func NewLogMailer(logger *slog.Logger) service.Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(ctx context.Context, msg *service.MailMessage) error {
	m.logger.InfoContext(ctx, "[LogMailer] Mail delivery disabled, logging message",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("purpose", msg.Purpose),
		slog.String("link", msg.Link),
	)

	return nil
}

func (m *logMailer) Close() error {
	return nil
}

// MailerParams holds dependencies for Mailer, injected by Fx
type MailerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewMailer creates the Mailer used by the account service, selected by mail.provider.
func NewMailer(params MailerParams) (service.Mailer, error) {
	cfg := params.Config.Mail
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		logger.Info("Mail provider not configured, using log mailer")

		return NewLogMailer(logger), nil
	}

	var mailer service.Mailer
	var err error

	switch cfg.Provider {
	case constants.MailProviderSMTP:
		mailer, err = NewSMTPMailer(cfg, qrcode.NewFromConfig(params.Config), logger)
		if err != nil {
			return nil, err
		}

	case constants.MailProviderLocal:
		if cfg.PubSub == nil || cfg.PubSub.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP mail publisher",
			slog.String("endpoint", cfg.PubSub.LocalEndpoint),
		)

		mailer = NewLocalHTTPMailer(cfg.PubSub.LocalEndpoint, logger)

	case constants.MailProviderGoogle:
		if cfg.PubSub == nil || cfg.PubSub.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.PubSub.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Using Google Pub/Sub mail publisher",
			slog.String("project_id", cfg.PubSub.ProjectID),
			slog.String("topic_id", cfg.PubSub.TopicID),
		)

		mailer, err = NewGooglePubSubMailer(params.Ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicID, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown mail provider: %s", cfg.Provider)
	}

	registerClose(params.Lc, mailer, logger)

	return mailer, nil
}

// DeliveryParams holds dependencies for the worker-side mailer.
type DeliveryParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewDeliveryMailer creates the mailer the worker uses to hand queued messages to SMTP.
// Without SMTP settings the worker logs messages instead.
func NewDeliveryMailer(params DeliveryParams) (service.Mailer, error) {
	cfg := params.Config.Mail
	if cfg == nil || cfg.SMTP == nil || cfg.SMTP.Host == "" {
		params.Logger.Info("SMTP not configured, worker will log messages")

		return NewLogMailer(params.Logger), nil
	}

	mailer, err := NewSMTPMailer(cfg, qrcode.NewFromConfig(params.Config), params.Logger)
	if err != nil {
		return nil, err
	}
	registerClose(params.Lc, mailer, params.Logger)

	return mailer, nil
}

func registerClose(lc fx.Lifecycle, mailer service.Mailer, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info("Closing Mailer")

			return mailer.Close()
		},
	})
}

// Module provides the mail FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewMailer),
)
