package middleware

import (
	"net/http"

	"github.com/Chakshu098/Everhack/internal/access"
	h "github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/session"
)

// AccessRecorder counts guard decisions.
type AccessRecorder interface {
	RecordAccessDecision(destination, outcome string)
}

// RequireAccess guards every route below it with the policy rule for
// destination. Denied callers never reach the handler: a redirect to the
// login page is answered with 401, any other redirect with 403, and both
// carry the target in error.redirect.
func RequireAccess(policy access.Policy, destination string, recorder AccessRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := policy.Decide(destination, session.FromContext(r.Context()).State())
			if recorder != nil {
				recorder.RecordAccessDecision(destination, string(d.Outcome))
			}
			switch d.Outcome {
			case access.Allow:
				next.ServeHTTP(w, r)
			case access.Pending:
				w.Header().Set("Retry-After", "1")
				h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodePending, "session is still resolving")
			default:
				status, code, msg := http.StatusForbidden, h.ErrCodeForbidden, "insufficient role"
				if d.Target == access.Login {
					status, code, msg = http.StatusUnauthorized, h.ErrCodeUnauthorized, "sign in required"
				}
				h.WriteAPIError(w, status, &h.APIError{Code: code, Message: msg, Redirect: d.Target})
			}
		})
	}
}
