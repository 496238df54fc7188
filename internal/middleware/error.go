package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// APIResponse is the uniform response envelope. Exactly one of Data and
// Error is non-nil.
type APIResponse struct {
	Data  interface{} `json:"data"`
	Error interface{} `json:"error"`
}

// RespondWithJSON sends a success envelope with the given payload
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIResponse{Data: payload, Error: nil})
}

// RespondWithError sends an error envelope with a null data field
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIResponse{Data: nil, Error: message})
}

// RespondWithValidationErrors sends a 400 envelope carrying per-field
// validation messages
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(APIResponse{
		Data: nil,
		Error: map[string]interface{}{
			"message":           "validation failed",
			"validation_errors": errors,
		},
	})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
