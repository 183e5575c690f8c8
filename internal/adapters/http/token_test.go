package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkeye/RoomCounter/internal/config"
	"github.com/dkeye/RoomCounter/internal/domain"
)

func joinReq(room, id, name string) domain.JoinRequest {
	return domain.JoinRequest{RoomID: domain.RoomID(room), UserID: domain.UserID(id), UserName: name}
}

func newUpstream(t *testing.T, status int, body map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q, want authorization_code", got)
		}
		if got := r.PostForm.Get("client_id"); got != "client" {
			t.Errorf("client_id = %q, want client", got)
		}
		if got := r.PostForm.Get("client_secret"); got != "secret" {
			t.Errorf("client_secret = %q, want secret", got)
		}
		if got := r.PostForm.Get("code"); got != "the-code" {
			t.Errorf("code = %q, want the-code", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestToken_MissingCode(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	w := do(t, h, http.MethodPost, "/token", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /token = %d, want 400", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "Authorization code is required" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestToken_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		strip func(*config.Config)
	}{
		{"no secret", func(c *config.Config) { c.Discord.ClientSecret = "" }},
		{"no redirect", func(c *config.Config) { c.Discord.RedirectURI = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.strip(cfg)
			h, _ := newTestRouter(t, cfg)

			w := do(t, h, http.MethodPost, "/token", `{"code":"the-code"}`)
			if w.Code != http.StatusInternalServerError {
				t.Errorf("POST /token = %d, want 500", w.Code)
			}
			var body map[string]string
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["error"] != "Server configuration error" {
				t.Errorf("error = %q", body["error"])
			}
		})
	}
}

func TestToken_Exchange(t *testing.T) {
	up := newUpstream(t, http.StatusOK, map[string]string{
		"access_token": "tok-123",
		"token_type":   "Bearer",
	})
	cfg := testConfig()
	cfg.Discord.TokenURL = up.URL
	h, _ := newTestRouter(t, cfg)

	w := do(t, h, http.MethodPost, "/token", `{"code":"the-code"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /token = %d %s, want 200", w.Code, w.Body.String())
	}
	var body tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.AccessToken != "tok-123" {
		t.Errorf("access_token = %q, want tok-123", body.AccessToken)
	}

	saved := false
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionName {
			saved = true
		}
	}
	if !saved {
		t.Error("session cookie not written")
	}
}

func TestToken_UpstreamFailure(t *testing.T) {
	up := newUpstream(t, http.StatusBadRequest, map[string]string{
		"error": "invalid_grant",
	})
	cfg := testConfig()
	cfg.Discord.TokenURL = up.URL
	h, _ := newTestRouter(t, cfg)

	w := do(t, h, http.MethodPost, "/token", `{"code":"the-code"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /token = %d, want 400", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Failed to exchange token" {
		t.Errorf("error = %q", body["error"])
	}
	if body["detail"] != "invalid_grant" {
		t.Errorf("detail = %q, want invalid_grant", body["detail"])
	}
}
