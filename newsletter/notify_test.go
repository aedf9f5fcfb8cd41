package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestResendNotifierSends(t *testing.T) {
	var got resendEmail
	var auth, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	n := NewResendNotifier("re_test", "News <news@example.com>", "owner@example.com")
	n.Endpoint = srv.URL

	err := n.Notify(context.Background(), Signup{
		Email: "reader@example.com",
		IP:    "203.0.113.5",
		At:    time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if auth != "Bearer re_test" {
		t.Fatalf("unexpected Authorization %q", auth)
	}
	if contentType != "application/json" {
		t.Fatalf("unexpected Content-Type %q", contentType)
	}
	if got.From != "News <news@example.com>" || got.To != "owner@example.com" || got.Subject != "New Newsletter Subscription" {
		t.Fatalf("unexpected payload %+v", got)
	}
	for _, want := range []string{"reader@example.com", "2025-03-14T09:26:53Z", "203.0.113.5"} {
		if !strings.Contains(got.HTML, want) {
			t.Errorf("expected html to contain %q:\n%s", want, got.HTML)
		}
	}
}

func TestResendNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewResendNotifier("bad", "a@example.com", "b@example.com")
	n.Endpoint = srv.URL

	err := n.Notify(context.Background(), Signup{Email: "x@example.com", At: time.Now()})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "invalid key") {
		t.Fatalf("expected response detail in error, got %v", err)
	}
}

func TestSignupEmailEscapes(t *testing.T) {
	var buf bytes.Buffer
	s := Signup{Email: `<script>alert(1)</script>@x.io`, At: time.Unix(0, 0)}
	if err := SignupEmail(s).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Fatalf("email was not escaped:\n%s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped email:\n%s", out)
	}
	if !strings.Contains(out, "Unknown") {
		t.Fatalf("expected Unknown for empty IP:\n%s", out)
	}
	if !strings.Contains(out, "1970-01-01T00:00:00Z") {
		t.Fatalf("expected UTC timestamp:\n%s", out)
	}
}
