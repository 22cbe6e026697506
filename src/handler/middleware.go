package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RequestLogger tags each request with a generated id and logs its outcome.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New()
		start := time.Now()

		next.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"request_id": requestID.String(),
			"method":     r.Method,
			"path":       r.URL.Path,
			"elapsed":    time.Since(start),
		}).Info("handled request")
	})
}
