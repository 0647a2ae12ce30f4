// File: middleware/tracing.go
package middleware

import (
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracing wraps the whole HTTP handler in X-Ray segments named name.
func Tracing(name string) func(http.Handler) http.Handler {
	namer := xray.NewFixedSegmentNamer(name)
	return func(next http.Handler) http.Handler {
		return xray.Handler(namer, next)
	}
}
