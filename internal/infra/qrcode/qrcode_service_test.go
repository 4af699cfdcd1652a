package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"accounts/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateLinkQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	qrBytes, err := service.GenerateLinkQR("https://app.example.com/verify/abc123")
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	img, err := png.Decode(bytes.NewReader(qrBytes))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestQRCodeService_GenerateLinkQR_DifferentSizes(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		service := NewQRCodeService(size, "M")

		qrBytes, err := service.GenerateLinkQR("https://app.example.com/reset/abc")
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(qrBytes))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
	}
}

func TestQRCodeService_GenerateLinkQR_EmptyLink(t *testing.T) {
	_, err := NewQRCodeService(256, "M").GenerateLinkQR("")
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, NewFromConfig(cfg))

	cfg.Mail = &config.MailConfig{QRCode: &config.QRCodeConfig{Enabled: false}}
	assert.Nil(t, NewFromConfig(cfg))

	cfg.Mail.QRCode.Enabled = true
	cfg.Mail.QRCode.Size = 128
	assert.NotNil(t, NewFromConfig(cfg))
}
