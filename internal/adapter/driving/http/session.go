package httphandler

import (
	"net/http"
)

// adminCookieName is the admin session cookie. HttpOnly + Secure +
// SameSite-Lax is the entire integrity story of the unsigned token inside,
// so the attributes are not negotiable.
const adminCookieName = "admin"

// requireAdmin wraps an admin handler with the session gate: validate on
// entry, fail closed with the cookie cleared when invalid, and re-issue a
// fresh token on the way through so the session slides with use.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(adminCookieName); err == nil {
			token = cookie.Value
		}

		state := h.sessions.Validate(token)
		if !state.Valid {
			clearSessionCookie(w)
			if state.Expired {
				writeError(w, http.StatusUnauthorized, "session expired")
			} else {
				writeError(w, http.StatusUnauthorized, "unauthorized")
			}
			return
		}

		h.setSessionCookie(w)
		next(w, r)
	}
}

// setSessionCookie issues a fresh session token on the response.
func (h *Handler) setSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    h.sessions.Issue(),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie instructs the client to discard the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
