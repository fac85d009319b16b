package middleware

import (
	"net/http"
	"net/url"

	goDrive "github.com/ferndrop/goDrive"
)

// ReturnToParam is the query parameter carrying the originally requested
// destination through the login redirect.
const ReturnToParam = "return_to"

// Protect gates a handler behind the route guard. The guard resolves the
// session fully (including the lazy profile fetch after rehydration) before
// a decision is made, so protected handlers never observe a half-restored
// session.
func Protect(guard *goDrive.RouteGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			switch guard.Authorize(r.Context(), r.URL.RequestURI()) {
			case goDrive.ShowContent:
				next.ServeHTTP(w, r)
			default:
				http.Redirect(w, r, LoginURL(guard, r.URL.RequestURI()), http.StatusFound)
			}
		})
	}
}

// LoginURL builds the login entry point URL with the requested destination
// preserved for post-login return.
func LoginURL(guard *goDrive.RouteGuard, destination string) string {
	if destination == "" {
		return guard.LoginPath()
	}
	return guard.LoginPath() + "?" + ReturnToParam + "=" + url.QueryEscape(destination)
}
