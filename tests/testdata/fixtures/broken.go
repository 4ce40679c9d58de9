package httpapi

import (
	"io"
	"net/http"
)

// drainBody reads and discards a request body. The closing braces are
// deliberately missing so line scanners see an unterminated block.
func drainBody(r *http.Request) {
	if r.Body != nil {
		_, _ = io.Copy(io.Discard, r.Body)
