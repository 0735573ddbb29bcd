package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/config"
)

func newTestClient(tokenURL, profileURL string) *Client {
	return NewClient(
		config.ProviderConfig{TokenURL: tokenURL, ProfileURL: profileURL},
		config.Secrets{ClientID: "client-id", ClientSecret: "client-secret"},
	)
}

func TestExchangeCodeWireShape(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"grant_type":    q.Get("grant_type"),
			"client_id":     q.Get("client_id"),
			"client_secret": q.Get("client_secret"),
			"code":          q.Get("code"),
			"state":         q.Get("state"),
		}
		w.Write([]byte(`{"access_token":"AT-1","refresh_token":"RT-1"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "")
	tok, err := client.ExchangeCode(context.Background(), "auth-code", "state/값")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if tok.AccessToken != "AT-1" || tok.RefreshToken != "RT-1" {
		t.Fatalf("unexpected tokens: %+v", tok)
	}

	want := map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     "client-id",
		"client_secret": "client-secret",
		"code":          "auth-code",
		"state":         "state/값",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestExchangeCodeWithoutAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Naver reports grant errors in a 200 body.
		w.Write([]byte(`{"error":"invalid_grant","error_description":"no valid data"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "")
	_, err := client.ExchangeCode(context.Background(), "bad-code", "state")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindProviderToken {
		t.Fatalf("expected KindProviderToken, got %v", apperr.KindOf(err))
	}
}

func TestRefreshWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", q.Get("grant_type"))
		}
		if q.Get("refresh_token") != "RT-stored" {
			t.Errorf("refresh_token = %q, want RT-stored", q.Get("refresh_token"))
		}
		if q.Get("code") != "" || q.Get("state") != "" {
			t.Error("refresh grant must not carry code or state")
		}
		w.Write([]byte(`{"access_token":"AT-new"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "")
	access, err := client.Refresh(context.Background(), "RT-stored")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access != "AT-new" {
		t.Fatalf("access = %q, want AT-new", access)
	}
}

func TestRefreshWithoutAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "")
	_, err := client.Refresh(context.Background(), "RT-revoked")
	if apperr.KindOf(err) != apperr.KindProviderRefresh {
		t.Fatalf("expected KindProviderRefresh, got %v (err=%v)", apperr.KindOf(err), err)
	}
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer AT-1" {
			t.Errorf("Authorization = %q, want Bearer AT-1", got)
		}
		w.Write([]byte(`{"resultcode":"00","message":"success","response":{"id":"naver-123","email":"kim@example.com","name":"Kim"}}`))
	}))
	defer srv.Close()

	client := newTestClient("", srv.URL)
	profile, err := client.FetchProfile(context.Background(), "AT-1")
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.ID != "naver-123" || profile.Email != "kim@example.com" || profile.Name != "Kim" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestFetchProfileMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"id":"naver-123"}}`))
	}))
	defer srv.Close()

	client := newTestClient("", srv.URL)
	if _, err := client.FetchProfile(context.Background(), "AT-1"); err == nil {
		t.Fatal("expected error for incomplete profile")
	}
}
