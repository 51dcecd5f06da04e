package httpapi

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"
)

// withCORS allows any origin, method and header. Preflight requests are
// answered here and never reach the routes.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		origin := r.Header.Get("Origin")
		if origin != "" {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Add("Vary", "Origin")
		} else {
			header.Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
				header.Set("Access-Control-Allow-Headers", requested)
			} else {
				header.Set("Access-Control-Allow-Headers", "*")
			}
			header.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func withTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the status code and size of a response, keeping
// up to maxLogBytes of the body for the request log.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	maxLogBytes  int
	bytesWritten int
	logBody      bytes.Buffer
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if room := r.maxLogBytes - r.logBody.Len(); room > 0 {
		if len(p) > room {
			r.logBody.Write(p[:room])
			r.truncated = true
		} else {
			r.logBody.Write(p)
		}
	} else if len(p) > 0 {
		r.truncated = true
	}

	written, err := r.ResponseWriter.Write(p)
	r.bytesWritten += written
	return written, err
}

func withRequestLog(maxLogBytes int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				maxLogBytes:    maxLogBytes,
			}

			next.ServeHTTP(recorder, r)

			elapsed := time.Since(started).Round(time.Microsecond)
			if recorder.statusCode < http.StatusBadRequest {
				log.Printf("%s %s -> %d (%d bytes) in %s", r.Method, r.URL.Path, recorder.statusCode, recorder.bytesWritten, elapsed)
				return
			}

			body := bytes.TrimSpace(recorder.logBody.Bytes())
			suffix := ""
			if recorder.truncated {
				suffix = "..."
			}
			log.Printf("%s %s -> %d (%d bytes) in %s: %s%s", r.Method, r.URL.Path, recorder.statusCode, recorder.bytesWritten, elapsed, body, suffix)
		})
	}
}
