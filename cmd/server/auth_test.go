package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestSessionValueRoundTrip(t *testing.T) {
	auth := newAuthService(nil, "secret")

	value := auth.createSessionValue("ana@example.com")
	email, ok := auth.verifySessionValue(value)
	if !ok || email != "ana@example.com" {
		t.Fatalf("expected valid session, got %q %v", email, ok)
	}

	for _, tampered := range []string{
		"",
		"no-dot",
		value + "00",
		strings.Replace(value, ".", ".x", 1),
		newAuthService(nil, "other").createSessionValue("ana@example.com"),
	} {
		if _, ok := auth.verifySessionValue(tampered); ok {
			t.Fatalf("expected %q to be rejected", tampered)
		}
	}
}

func TestValidateCredentials(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	ok, err := srv.auth.validateCredentials(ctx, testAdminEmail, testAdminPassword)
	if err != nil || !ok {
		t.Fatalf("expected valid credentials, got %v %v", ok, err)
	}
	ok, err = srv.auth.validateCredentials(ctx, testAdminEmail, "wrong")
	if err != nil || ok {
		t.Fatalf("expected wrong password to fail, got %v %v", ok, err)
	}
	ok, err = srv.auth.validateCredentials(ctx, "nobody@example.com", testAdminPassword)
	if err != nil || ok {
		t.Fatalf("expected unknown user to fail, got %v %v", ok, err)
	}
}

func TestLoginFormSetsSessionCookie(t *testing.T) {
	srv := newTestServer(t)
	router := srv.routes()

	form := url.Values{}
	form.Set("email", testAdminEmail)
	form.Set("password", testAdminPassword)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatalf("expected session cookie")
	}

	apiReq := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	apiReq.AddCookie(session)
	apiRR := httptest.NewRecorder()
	router.ServeHTTP(apiRR, apiReq)
	if apiRR.Code != http.StatusOK {
		t.Fatalf("expected authenticated request to succeed, got %d", apiRR.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"`+testAdminEmail+`","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected json error, got %q", rr.Header().Get("Content-Type"))
	}
}
