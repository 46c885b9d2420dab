package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCookies(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{
			name:   "single cookie",
			header: "clientId=abc123",
			want:   map[string]string{"clientId": "abc123"},
		},
		{
			name:   "multiple cookies",
			header: "clientId=abc123; theme=dark; lang=en",
			want:   map[string]string{"clientId": "abc123", "theme": "dark", "lang": "en"},
		},
		{
			name:   "url-decoded value",
			header: "session=a%3Db%20c",
			want:   map[string]string{"session": "a=b c"},
		},
		{
			name:   "malformed pair skipped",
			header: "justgarbage; clientId=abc123",
			want:   map[string]string{"clientId": "abc123"},
		},
		{
			name:   "value containing equals keeps remainder",
			header: "token=a=b",
			want:   map[string]string{"token": "a=b"},
		},
		{
			name:   "empty header",
			header: "",
			want:   map[string]string{},
		},
		{
			name:   "undecodable value kept raw",
			header: "clientId=abc%zz",
			want:   map[string]string{"clientId": "abc%zz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCookies(tt.header))
		})
	}
}

// capture is the innermost handler: it records the client id the middleware
// resolved for the request.
func capture(into *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*into = ClientID(r.Context())
	})
}

func TestMiddlewareAssignsNewID(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	Middleware(capture(&seen)).ServeHTTP(rr, req)

	assert.NotEmpty(t, seen, "middleware should resolve a client id")

	cookies := rr.Result().Cookies()
	if assert.Len(t, cookies, 1, "a new visitor should receive exactly one cookie") {
		c := cookies[0]
		assert.Equal(t, CookieName, c.Name)
		assert.Equal(t, seen, c.Value, "cookie value must match the context id")
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Zero(t, c.MaxAge, "no expiry: session-durable cookie")
	}
}

func TestMiddlewareReusesExistingID(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "clientId=existing-client")
	rr := httptest.NewRecorder()

	Middleware(capture(&seen)).ServeHTTP(rr, req)

	assert.Equal(t, "existing-client", seen)
	assert.Empty(t, rr.Result().Cookies(), "no Set-Cookie when the id already exists")
}

func TestMiddlewareGeneratesDistinctIDs(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		var seen string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		Middleware(capture(&seen)).ServeHTTP(rr, req)
		ids[seen] = true
	}
	assert.Len(t, ids, 50, "generated ids should not collide")
}

func TestClientIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ClientID(req.Context()))
}
