package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFlareSolverrCookiesOutlivesSharedClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Slower than the shared adapter client allows; the solve call
		// must not ride that client's deadline.
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{
			"status": "ok",
			"solution": {
				"userAgent": "ua",
				"cookies": [
					{"name": "cf_clearance", "value": "tok", "domain": ".exploretock.com",
					 "path": "/", "expiry": 1766188800, "secure": true, "httpOnly": true}
				]
			}
		}`))
	}))
	defer srv.Close()

	env := testEnv(t)
	env.HTTP = &http.Client{Timeout: 50 * time.Millisecond}
	env.FlareSolverrURL = srv.URL

	cookies, err := flareSolverrCookies(context.Background(), env, putteryPageURL)
	if err != nil {
		t.Fatalf("flareSolverrCookies: %v", err)
	}
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != "cf_clearance" || c.Value != "tok" {
		t.Errorf("cookie = %+v", c)
	}
	if c.Domain == nil || *c.Domain != ".exploretock.com" {
		t.Errorf("domain = %v", c.Domain)
	}
	if c.Expires == nil || *c.Expires != 1766188800 {
		t.Errorf("expires = %v", c.Expires)
	}
}

func TestFlareSolverrCookiesSolveFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "challenge not solved"}`))
	}))
	defer srv.Close()

	env := testEnv(t)
	env.FlareSolverrURL = srv.URL

	_, err := flareSolverrCookies(context.Background(), env, putteryPageURL)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("got %v, want ErrTransient", err)
	}
}
