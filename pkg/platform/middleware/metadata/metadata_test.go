package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"votecast/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "x-forwarded-for single ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for chain takes first ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2, 10.0.0.3"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip when no forwarded header",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			want:       "198.51.100.4",
		},
		{
			name:       "remote addr strips port",
			remoteAddr: "192.0.2.9:5678",
			want:       "192.0.2.9",
		},
		{
			name:       "ipv6 remote addr strips port",
			remoteAddr: "[::1]:5678",
			want:       "[::1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIPFromRequest(r); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var gotOrigin, gotUA, gotScope string
	handler := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrigin = requestcontext.Origin(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
		gotScope = requestcontext.ClientScope(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.9:5678"
	r.Header.Set("User-Agent", "Mozilla/5.0")
	r.Header.Set(ClientScopeHeader, "kiosk-3")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if gotOrigin != "192.0.2.9" {
		t.Fatalf("expected origin 192.0.2.9, got %q", gotOrigin)
	}
	if gotUA != "Mozilla/5.0" {
		t.Fatalf("expected user agent Mozilla/5.0, got %q", gotUA)
	}
	if gotScope != "kiosk-3" {
		t.Fatalf("expected client scope kiosk-3, got %q", gotScope)
	}
}
