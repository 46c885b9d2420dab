// Package identity assigns each browser an opaque client identifier.
//
// THIS IS NOT AUTHENTICATION:
// The identifier proves nothing about who the visitor is — it only lets the
// guestbook recognise the same browser across requests, so that "show mine"
// filtering and delete permission have something to key on. Anyone can forge
// the cookie; the worst they gain is the ability to delete an anonymous
// guestbook entry. That tradeoff is deliberate (see the service layer).
//
// COOKIE-BASED IDENTITY FLOW:
// 1. First request arrives with no clientId cookie
// 2. Middleware generates a fresh id and schedules
//    Set-Cookie: clientId=<id>; Path=/; HttpOnly; SameSite=Lax
// 3. The browser sends Cookie: clientId=<id> on every later request
// 4. Handlers read the id from the request context
//
// HttpOnly keeps the cookie away from page JavaScript; SameSite=Lax stops
// other sites from riding the identity on cross-site POSTs. No Expires/Max-Age
// is set, so the cookie is session-durable — it lives as long as the browser
// chooses to keep it.
package identity

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/guestbook/internal/model"
)

// CookieName is the cookie carrying the client identifier.
const CookieName = "clientId"

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "clientID", id), ANY package that knows the string
// can read or shadow your value. A package-private key type means only this
// package can read or write client ids in the context.
type contextKey string

const clientIDKey contextKey = "clientID"

// ParseCookies parses a raw Cookie header into a name → value map.
//
// The header is a semicolon-delimited list of name=value pairs. Values are
// URL-decoded (browsers and older guestbook clients percent-encode them);
// a value that fails to decode is kept raw rather than dropped. Pairs with
// no "=" at all are malformed and skipped.
//
// WHY NOT http.Request.Cookie?
// The stdlib parser silently drops cookies whose values contain characters
// it considers invalid, and it does not percent-decode. Old guestbook
// deployments wrote percent-encoded ids, so we parse the header ourselves —
// it is ten lines, and it is exactly the behaviour the data in the wild needs.
func ParseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	for _, pair := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		cookies[name] = value
	}
	return cookies
}

// Middleware resolves the client identifier for every request.
//
// If the clientId cookie is present its value is reused; otherwise a fresh
// identifier is generated and a persistent cookie is scheduled on the
// response. Either way the id is stored in the request context for handlers
// to read via ClientID. This middleware never fails a request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ParseCookies(r.Header.Get("Cookie"))[CookieName]
		if id == "" {
			id = model.NewID()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), clientIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientID retrieves the client identifier from the request context.
// Returns "" only if Middleware did not run (e.g. a handler tested in
// isolation); routed requests always carry an id.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}
