package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"accounts/config"
	"accounts/internal/domain/service"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
)

const qrCodeImageName = "qrcode.png"

// smtpMailer sends messages directly over SMTP.
type smtpMailer struct {
	client *gomail.Client
	from   string
	qr     service.QRCodeService
	logger *slog.Logger
}

// NewSMTPMailer creates an SMTP mailer. When qr is non-nil, messages carrying a link get the
// link embedded as an inline QR image.
func NewSMTPMailer(cfg *config.MailConfig, qr service.QRCodeService, logger *slog.Logger) (service.Mailer, error) {
	if cfg.SMTP == nil || cfg.SMTP.Host == "" {
		return nil, errors.New("smtp host is required for smtp provider")
	}
	if cfg.From == "" {
		return nil, errors.New("sender address is required for smtp provider")
	}

	client, err := gomail.NewClient(cfg.SMTP.Host, smtpOptions(cfg.SMTP)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smtp client")
	}

	logger.Info("SMTP mailer initialized",
		slog.String("host", cfg.SMTP.Host),
		slog.Int("port", cfg.SMTP.Port),
		slog.Bool("qrcode", qr != nil),
	)

	return &smtpMailer{
		client: client,
		from:   cfg.From,
		qr:     qr,
		logger: logger,
	}, nil
}

func smtpOptions(cfg *config.SMTPConfig) []gomail.Option {
	opts := []gomail.Option{gomail.WithTLSPolicy(tlsPolicy(cfg.TLS))}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	return opts
}

func tlsPolicy(policy string) gomail.TLSPolicy {
	switch strings.ToLower(policy) {
	case "none":
		return gomail.NoTLS
	case "opportunistic":
		return gomail.TLSOpportunistic
	default:
		return gomail.TLSMandatory
	}
}

// Send builds and delivers the message in a single SMTP session.
func (m *smtpMailer) Send(ctx context.Context, msg *service.MailMessage) error {
	message, err := m.buildMessage(msg)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, message); err != nil {
		return errors.Wrapf(err, "failed to send mail to %s", msg.To)
	}

	m.logger.InfoContext(ctx, "[SMTP] Mail sent",
		slog.String("to", msg.To),
		slog.String("purpose", msg.Purpose),
	)

	return nil
}

func (m *smtpMailer) buildMessage(msg *service.MailMessage) (*gomail.Msg, error) {
	message := gomail.NewMsg()
	if err := message.From(m.from); err != nil {
		return nil, errors.Wrap(err, "invalid sender address")
	}
	if err := message.To(msg.To); err != nil {
		return nil, errors.Wrap(err, "invalid recipient address")
	}
	message.Subject(msg.Subject)
	message.SetDate()

	body := msg.HTML
	if m.qr != nil && msg.Link != "" {
		png, err := m.qr.GenerateLinkQR(msg.Link)
		if err != nil {
			return nil, errors.Wrap(err, "failed to render link QR code")
		}
		if err := message.EmbedReader(qrCodeImageName, bytes.NewReader(png),
			gomail.WithFileContentType(gomail.ContentType("image/png"))); err != nil {
			return nil, errors.Wrap(err, "failed to embed QR code")
		}
		body += `<p><img src="cid:` + qrCodeImageName + `" alt="QR code"></p>`
	}
	message.SetBodyString(gomail.TypeTextHTML, body)

	return message, nil
}

// Close is a no-op; each Send dials its own connection.
func (m *smtpMailer) Close() error {
	return nil
}

// IsPermanent reports whether the SMTP server rejected the message for good.
// Temporary failures and connection problems are worth retrying.
func IsPermanent(err error) bool {
	var sendErr *gomail.SendError
	if errors.As(err, &sendErr) {
		return !sendErr.IsTemp()
	}

	return false
}
