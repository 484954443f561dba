package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/api/shared"
)

// RecipientHeader carries the id of the recipient the gateway authenticated.
const RecipientHeader = "X-User-ID"

// RequireRecipient reads the authenticated recipient id from RecipientHeader
// and adds it to the request context. Requests without a valid id are
// rejected before reaching next.
func RequireRecipient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(RecipientHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Recipient header required")
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid recipient id", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithRecipientID(r.Context(), id)))
	})
}

// GetRecipientID extracts the recipient id from the request context.
// Returns the id and a boolean indicating if it was found.
func GetRecipientID(r *http.Request) (uuid.UUID, bool) {
	return shared.RecipientID(r.Context())
}
