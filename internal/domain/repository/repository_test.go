package repository

import (
	"testing"
	"time"
)

func TestNormalizedResponseType(t *testing.T) {
	cases := map[string]string{
		"":               ResponseTypeCode,
		"code":           ResponseTypeCode,
		"token":          ResponseTypeToken,
		"id_token":       ResponseTypeIDToken,
		"id_token token": ResponseTypeTokenIDToken,
		"token id_token": ResponseTypeTokenIDToken,
	}
	for in, want := range cases {
		got := AuthParams{ResponseType: in}.NormalizedResponseType()
		if got != want {
			t.Fatalf("%q: got %q want %q", in, got, want)
		}
	}
}

func TestSplitURLs(t *testing.T) {
	got := SplitURLs(" https://a.example.com/cb, ,https://b.example.com ")
	if len(got) != 2 || got[0] != "https://a.example.com/cb" || got[1] != "https://b.example.com" {
		t.Fatalf("unexpected %v", got)
	}
	if SplitURLs("") != nil {
		t.Fatal("empty should be nil")
	}
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if !s.Active(now) {
		t.Fatal("expected active")
	}
	deleted := now
	s.DeletedAt = &deleted
	if s.Active(now) {
		t.Fatal("deleted session must be inactive")
	}
	if (&Session{ExpiresAt: now.Add(-time.Second)}).Active(now) {
		t.Fatal("expired session must be inactive")
	}
}

func TestClientConnectionLookup(t *testing.T) {
	c := &Client{Connections: []Connection{{Name: "google-oauth2"}}}
	if _, ok := c.Connection("Google-OAuth2"); !ok {
		t.Fatal("lookup must be case-insensitive")
	}
	if _, ok := c.Connection("github"); ok {
		t.Fatal("unexpected match")
	}
	c.Callbacks = []string{"https://app/cb"}
	if got := c.LogoutURLs(); len(got) != 1 {
		t.Fatalf("logout falls back to callbacks, got %v", got)
	}
}
