package api

import (
	"net/http"
	"time"

	"github.com/pineda/postd/pkg/httputil"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  int64  `json:"uptime"`
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, HealthResponse{
		Status:  "ok",
		Version: a.version,
		Uptime:  int64(time.Since(a.startTime).Seconds()),
	})
}
