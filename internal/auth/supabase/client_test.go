package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ClientSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) TestAuthorizeURL() {
	client := New("https://project.supabase.co", "anon-key", time.Second)

	s.Run("url carries the full pkce parameter set", func() {
		raw := client.AuthorizeURL("google", "https://mindlog.example/auth/callback", "challenge-value", "select_account")

		parsed, err := url.Parse(raw)
		s.Require().NoError(err)
		s.Equal("/auth/v1/authorize", parsed.Path)

		q := parsed.Query()
		s.Equal("google", q.Get("provider"))
		s.Equal("https://mindlog.example/auth/callback", q.Get("redirect_to"))
		s.Equal("challenge-value", q.Get("code_challenge"))
		s.Equal("S256", q.Get("code_challenge_method"))
		s.Equal("pkce", q.Get("flow_type"))
		s.Equal("select_account", q.Get("prompt"))
	})

	s.Run("redirect target with query of its own survives encoding", func() {
		redirect := "https://mindlog.example/auth/callback?source=app&v=abc"
		raw := client.AuthorizeURL("google", redirect, "c", "login")

		parsed, err := url.Parse(raw)
		s.Require().NoError(err)
		s.Equal(redirect, parsed.Query().Get("redirect_to"))
	})
}

func (s *ClientSuite) TestExchangeCodeForToken() {
	s.Run("successful exchange decodes tokens and user", func() {
		var gotPath, gotGrant, gotAPIKey string
		var gotBody map[string]string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotGrant = r.URL.Query().Get("grant_type")
			gotAPIKey = r.Header.Get("apikey")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)

			_ = json.NewEncoder(w).Encode(TokenResponse{
				AccessToken:  "access-A",
				RefreshToken: "refresh-R",
				User: User{
					ID:    "11111111-1111-1111-1111-111111111111",
					Email: "a@b.com",
					UserMetadata: map[string]any{
						"full_name":  "Ada Lovelace",
						"avatar_url": "https://cdn.example/ada.png",
					},
				},
			})
		}))
		defer srv.Close()

		client := New(srv.URL, "anon-key", time.Second)
		tok, err := client.ExchangeCodeForToken(context.Background(), "the-code", "the-verifier")
		s.Require().NoError(err)

		s.Equal("/auth/v1/token", gotPath)
		s.Equal("pkce", gotGrant)
		s.Equal("anon-key", gotAPIKey)
		s.Equal("the-code", gotBody["auth_code"])
		s.Equal("the-verifier", gotBody["code_verifier"])

		s.Equal("access-A", tok.AccessToken)
		s.Equal("refresh-R", tok.RefreshToken)
		s.Equal("a@b.com", tok.User.Email)
		s.Equal("Ada Lovelace", tok.User.Metadata("full_name"))
	})

	s.Run("non-2xx surfaces as an error with the body snippet", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, "anon-key", time.Second)
		tok, err := client.ExchangeCodeForToken(context.Background(), "bad-code", "verifier")
		s.Nil(tok)
		s.Require().Error(err)
		s.Contains(err.Error(), "400")
		s.Contains(err.Error(), "invalid_grant")
	})

	s.Run("timeout surfaces as an error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := New(srv.URL, "anon-key", 20*time.Millisecond)
		_, err := client.ExchangeCodeForToken(context.Background(), "code", "verifier")
		s.Error(err)
	})

	s.Run("malformed response body surfaces as an error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		client := New(srv.URL, "anon-key", time.Second)
		_, err := client.ExchangeCodeForToken(context.Background(), "code", "verifier")
		s.Error(err)
	})
}

func (s *ClientSuite) TestUserMetadata() {
	s.Run("missing or non-string values read as empty", func() {
		u := User{UserMetadata: map[string]any{"count": 3}}
		s.Empty(u.Metadata("count"))
		s.Empty(u.Metadata("absent"))
		s.Empty(User{}.Metadata("anything"))
	})
}
