package middleware

import (
	"net/http"
	"runtime/debug"

	"incywincy-api/pkg/apierror"
	"incywincy-api/pkg/response"

	"github.com/rs/zerolog/log"
)

// Recovery is a middleware that recovers from panics so one failing request
// never takes down the server.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.Error().
					Interface("panic", err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")

				response.Error(w, apierror.InternalError("internal server error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
