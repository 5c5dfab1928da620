package service

// QRCodeService renders an authorize URL as a scannable QR code so a connect
// flow started on this device can be completed on a phone.
type QRCodeService interface {
	// GenerateConnectQR returns a PNG image encoding the given URL.
	GenerateConnectQR(url string) ([]byte, error)
}
