package service

// QRCodeService renders links as PNG QR codes.
type QRCodeService interface {
	// GenerateLinkQR encodes the link as a PNG image.
	GenerateLinkQR(link string) ([]byte, error)
}
