package routes

import (
	"math/rand/v2"
	"net/http"
	"time"
)

type cachedDemo struct {
	Data        string  `json:"data"`
	GeneratedAt string  `json:"generatedAt"`
	Random      float64 `json:"random"`
}

type limitedDemo struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *handlers) stamp() string { return h.now().UTC().Format(time.RFC3339Nano) }

func (h *handlers) cachedDemo(w http.ResponseWriter, data string) {
	writeJSON(w, http.StatusOK, cachedDemo{Data: data, GeneratedAt: h.stamp(), Random: rand.Float64()})
}

func (h *handlers) demoCached(w http.ResponseWriter, r *http.Request) {
	h.cachedDemo(w, "This response is cached")
}

func (h *handlers) demoCachedLong(w http.ResponseWriter, r *http.Request) {
	h.cachedDemo(w, "This response is cached for longer")
}

func (h *handlers) demoNotCached(w http.ResponseWriter, r *http.Request) {
	h.cachedDemo(w, "This response is NOT cached")
}

func (h *handlers) limitedDemo(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, limitedDemo{Message: msg, Timestamp: h.stamp()})
}

func (h *handlers) demoRateLimited(w http.ResponseWriter, r *http.Request) {
	h.limitedDemo(w, "This endpoint is rate limited")
}

func (h *handlers) demoRateLimitedStrict(w http.ResponseWriter, r *http.Request) {
	h.limitedDemo(w, "This endpoint has strict rate limiting")
}

func (h *handlers) demoNoLimit(w http.ResponseWriter, r *http.Request) {
	h.limitedDemo(w, "This endpoint has no rate limit")
}

func (h *handlers) rateStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.stats.ReadStats(r.Context())
	if err != nil {
		h.storeFailed(w, "Failed to read rate limit stats", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
