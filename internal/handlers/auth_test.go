package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"thermostat_triggers/internal/service"
)

func TestSignUp(t *testing.T) {
	auth := &mockAuth{signUpID: 3}
	r := newTestRouter(&service.Service{Authorization: auth})

	body := bytes.NewBufferString(`{"username":"alice","password":"s3cret"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if auth.lastSignUpUsername != "alice" || auth.lastSignUpPassword != "s3cret" {
		t.Fatalf("credentials not forwarded: %q/%q", auth.lastSignUpUsername, auth.lastSignUpPassword)
	}
	var resp struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != 3 {
		t.Fatalf("expected id 3, got %d", resp.ID)
	}
}

func TestSignUp_MissingFields(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}})

	body := bytes.NewBufferString(`{"username":"alice"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSignIn(t *testing.T) {
	auth := &mockAuth{genTokenToken: "jwt-token"}
	r := newTestRouter(&service.Service{Authorization: auth})

	body := bytes.NewBufferString(`{"username":"alice","password":"s3cret"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Fatalf("expected token, got %q", resp.Token)
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	auth := &mockAuth{genTokenErr: errors.New("invalid password")}
	r := newTestRouter(&service.Service{Authorization: auth})

	body := bytes.NewBufferString(`{"username":"alice","password":"wrong"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}
