// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound calls to the tactics backend.
// Generation can take a while on a cold model.
var HTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}
