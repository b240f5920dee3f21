package integration

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestLoginSetsRefreshCookieAndIssuesAccessToken(t *testing.T) {
	baseURL, client, closeFn := newAPITestServer(t)
	defer closeFn()

	registerUser(t, client, baseURL, "login-flow@example.com", "hunter2hunter2")

	// Raw request so the Set-Cookie attributes are visible before the jar
	// normalizes them away.
	resp, err := http.Post(baseURL+"/login", "application/x-www-form-urlencoded",
		strings.NewReader(url.Values{
			"username": {"login-flow@example.com"},
			"password": {"hunter2hunter2"},
		}.Encode()))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var refresh *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	if refresh == nil {
		t.Fatal("expected refresh_token cookie on login response")
	}
	if refresh.Value == "" {
		t.Fatal("expected non-empty refresh token")
	}
	if !refresh.HttpOnly {
		t.Error("refresh cookie must be HttpOnly")
	}
	if refresh.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", refresh.SameSite)
	}
	if want := int((7 * 24 * time.Hour).Seconds()); refresh.MaxAge != want {
		t.Errorf("expected Max-Age=%d, got %d", want, refresh.MaxAge)
	}

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	var data struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.AccessToken == "" || data.TokenType != "bearer" {
		t.Fatalf("unexpected token payload: %+v", data)
	}
}

func TestLoginWrongPasswordAndUnknownEmailSame403(t *testing.T) {
	baseURL, client, closeFn := newAPITestServer(t)
	defer closeFn()

	registerUser(t, client, baseURL, "known@example.com", "correct-password")

	for _, creds := range []url.Values{
		{"username": {"known@example.com"}, "password": {"wrong-password"}},
		{"username": {"nobody@example.com"}, "password": {"correct-password"}},
	} {
		resp, env := doForm(t, client, baseURL+"/login", creds)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 for %v, got %d", creds, resp.StatusCode)
		}
		if env.Error == nil || env.Error.Code != "INVALID_CREDENTIALS" {
			t.Fatalf("expected INVALID_CREDENTIALS error, got %+v", env.Error)
		}
	}
}

func TestRefreshRotatesTokenAndRejectsReuse(t *testing.T) {
	baseURL, client, closeFn := newAPITestServer(t)
	defer closeFn()

	registerUser(t, client, baseURL, "rotate@example.com", "hunter2hunter2")
	loginUser(t, client, baseURL, "rotate@example.com", "hunter2hunter2")

	first := cookieValue(t, client, baseURL, "refresh_token")
	if first == "" {
		t.Fatal("expected refresh cookie after login")
	}

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/refresh", nil, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("refresh failed: status=%d success=%v", resp.StatusCode, env.Success)
	}
	var data struct {
		AccessToken string `json:"access_token"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode refresh data: %v", err)
	}
	if data.AccessToken == "" {
		t.Fatal("expected fresh access token")
	}
	if data.Message != "tokens refreshed successfully" {
		t.Fatalf("unexpected message %q", data.Message)
	}

	second := cookieValue(t, client, baseURL, "refresh_token")
	if second == "" || second == first {
		t.Fatalf("expected rotated refresh token, first=%q second=%q", first, second)
	}

	// Replaying the pre-rotation token must fail even though it has not
	// expired.
	req, err := http.NewRequest(http.MethodPost, baseURL+"/refresh", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: first})
	replay, replayEnv := send(t, &http.Client{}, req)
	if replay.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for reused token, got %d", replay.StatusCode)
	}
	if replayEnv.Error == nil || replayEnv.Error.Code != "INVALID_TOKEN" {
		t.Fatalf("expected INVALID_TOKEN error, got %+v", replayEnv.Error)
	}
}

func TestRefreshWithoutCookie401(t *testing.T) {
	baseURL, _, closeFn := newAPITestServer(t)
	defer closeFn()

	resp, env := doJSON(t, &http.Client{}, http.MethodPost, baseURL+"/refresh", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "INVALID_TOKEN" {
		t.Fatalf("expected INVALID_TOKEN error, got %+v", env.Error)
	}
}

func TestLogoutRevokesTokenAndClearsCookie(t *testing.T) {
	baseURL, client, closeFn := newAPITestServer(t)
	defer closeFn()

	registerUser(t, client, baseURL, "logout@example.com", "hunter2hunter2")
	loginUser(t, client, baseURL, "logout@example.com", "hunter2hunter2")
	revoked := cookieValue(t, client, baseURL, "refresh_token")

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/logout", nil, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("logout failed: status=%d success=%v", resp.StatusCode, env.Success)
	}
	if got := cookieValue(t, client, baseURL, "refresh_token"); got != "" {
		t.Fatalf("expected cleared refresh cookie, got %q", got)
	}

	// Revoked tokens stay revoked.
	req, err := http.NewRequest(http.MethodPost, baseURL+"/refresh", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: revoked})
	replay, _ := send(t, &http.Client{}, req)
	if replay.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", replay.StatusCode)
	}
}

func TestLogoutWithoutSessionStill200(t *testing.T) {
	baseURL, _, closeFn := newAPITestServer(t)
	defer closeFn()

	resp, env := doJSON(t, &http.Client{}, http.MethodPost, baseURL+"/logout", nil, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("expected 200 on cookieless logout, got status=%d success=%v", resp.StatusCode, env.Success)
	}

	// The cookie is still cleared even when none was presented.
	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("expected a clearing refresh_token cookie on the response")
	}
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("expected emptied expiring cookie, got value=%q max-age=%d", cleared.Value, cleared.MaxAge)
	}
}

func TestMeRequiresValidBearerToken(t *testing.T) {
	baseURL, client, closeFn := newAPITestServer(t)
	defer closeFn()

	registerUser(t, client, baseURL, "me@example.com", "hunter2hunter2")
	access := loginUser(t, client, baseURL, "me@example.com", "hunter2hunter2")

	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/users/me", nil, bearer(access))
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("me failed: status=%d success=%v", resp.StatusCode, env.Success)
	}
	var me struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "me@example.com" || me.ID == 0 {
		t.Fatalf("unexpected principal %+v", me)
	}

	for name, headers := range map[string]map[string]string{
		"no header":     nil,
		"garbage token": bearer("not-a-jwt"),
		"wrong scheme":  {"Authorization": "Basic " + access},
	} {
		resp, env := doJSON(t, &http.Client{}, http.MethodGet, baseURL+"/users/me", nil, headers)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
		if env.Error == nil || env.Error.Message != "could not validate credentials" {
			t.Fatalf("%s: expected uniform credential error, got %+v", name, env.Error)
		}
	}
}

func TestDuplicateEmailRegistrationRejected(t *testing.T) {
	baseURL, client, closeFn := newAPITestServer(t)
	defer closeFn()

	registerUser(t, client, baseURL, "dup@example.com", "hunter2hunter2")

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/users", map[string]string{
		"email":    "dup@example.com",
		"password": "other-password",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "EMAIL_TAKEN" {
		t.Fatalf("expected EMAIL_TAKEN error, got %+v", env.Error)
	}
}
