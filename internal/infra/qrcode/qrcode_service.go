package qrcode

import (
	"accounts/config"
	"accounts/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// NewFromConfig returns nil when QR images are disabled for outgoing mail.
func NewFromConfig(cfg *config.Config) service.QRCodeService {
	if cfg.Mail == nil || cfg.Mail.QRCode == nil || !cfg.Mail.QRCode.Enabled {
		return nil
	}

	return NewQRCodeService(cfg.Mail.QRCode.Size, cfg.Mail.QRCode.ErrorCorrectionLevel)
}

// GenerateLinkQR renders the link as a PNG QR code.
func (s *qrcodeService) GenerateLinkQR(link string) ([]byte, error) {
	if link == "" {
		return nil, errors.New("link is empty")
	}

	qrCode, err := qrcode.New(link, s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}
