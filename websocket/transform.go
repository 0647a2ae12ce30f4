// file: websocket/transform.go
package websocket

import (
	"fmt"
	"strings"

	"gamepad-websocket/models"
)

// DeviceIDPlaceholder is replaced by the raw device identifier.
const DeviceIDPlaceholder = "%1"

// ValidateTransform rejects templates with more than one placeholder. It is
// meant to run once at configuration time.
func ValidateTransform(template string) error {
	if n := strings.Count(template, DeviceIDPlaceholder); n > 1 {
		return fmt.Errorf("%w: device identifier transform %q has %d %s tokens, at most one is supported",
			models.ErrConfiguration, template, n, DeviceIDPlaceholder)
	}
	return nil
}

// TransformDeviceID renders the identifier sent to clients.
func TransformDeviceID(raw, template string) string {
	if template == "" {
		return raw
	}
	return strings.Replace(template, DeviceIDPlaceholder, raw, 1)
}
