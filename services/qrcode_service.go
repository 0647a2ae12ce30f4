// Package services holds small application services used by main and the
// controllers.
// file: services/qrcode_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can replace it.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateQRCode renders content as a size x size PNG.
func GenerateQRCode(content string, size int, encode QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	if content == "" {
		return nil, errors.New("nothing to encode")
	}
	if encode == nil {
		encode = qrcode.Encode
	}
	png, err := encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}

// ConnectURL is the websocket URL clients should use. A configured
// application URL wins over the local default.
func ConnectURL(applicationURL string, port uint16, endpoint string) string {
	if applicationURL != "" {
		return applicationURL
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return fmt.Sprintf("ws://localhost:%d%s", port, endpoint)
}
