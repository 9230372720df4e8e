package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotscout/internal/logger"
)

func testEnv(t *testing.T) *Env {
	t.Helper()
	return &Env{
		HTTP: &http.Client{Timeout: 5 * time.Second},
		Log:  logger.New("AdapterTest"),
	}
}

func TestValidateRequest(t *testing.T) {
	cases := []struct {
		name    string
		req     Request
		invalid bool
	}{
		{"ok with date", Request{PartySize: 4, Date: "2025-12-20"}, false},
		{"ok without date", Request{PartySize: 1}, false},
		{"zero party", Request{PartySize: 0, Date: "2025-12-20"}, true},
		{"bad date format", Request{PartySize: 4, Date: "20/12/2025"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRequest(tc.req)
			if tc.invalid && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
			if !tc.invalid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetJSONClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"name":"swingers"}`))
		case "/garbage":
			w.Write([]byte(`<html>not json</html>`))
		case "/missing":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	env := testEnv(t)
	ctx := context.Background()

	var dest struct {
		Name string `json:"name"`
	}
	if err := getJSON(ctx, env, srv.URL+"/ok", nil, &dest); err != nil {
		t.Fatalf("getJSON ok: %v", err)
	}
	if dest.Name != "swingers" {
		t.Errorf("decoded name = %q", dest.Name)
	}

	err := getJSON(ctx, env, srv.URL+"/garbage", nil, &dest)
	if !errors.Is(err, ErrPermanent) {
		t.Errorf("garbage body: got %v, want ErrPermanent", err)
	}

	err = getJSON(ctx, env, srv.URL+"/missing", nil, &dest)
	if !errors.Is(err, ErrPermanent) || !isStatus(err, http.StatusBadRequest) {
		t.Errorf("400 response: got %v, want permanent status error", err)
	}

	err = getJSON(ctx, env, srv.URL+"/boom", nil, &dest)
	if !errors.Is(err, ErrTransient) || !isStatus(err, http.StatusBadGateway) {
		t.Errorf("502 response: got %v, want transient status error", err)
	}
	if isStatus(err, http.StatusBadRequest) {
		t.Errorf("isStatus matched the wrong code")
	}
}

func TestGetJSONSendsHeaders(t *testing.T) {
	var gotAgent, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var dest map[string]any
	err := getJSON(context.Background(), testEnv(t), srv.URL, map[string]string{"Authorization": "Bearer x"}, &dest)
	if err != nil {
		t.Fatalf("getJSON: %v", err)
	}
	if gotAgent != defaultUserAgent {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	if gotAuth != "Bearer x" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
