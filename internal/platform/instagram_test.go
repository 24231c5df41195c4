package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

func newInstagramAgainst(srv *httptest.Server) *InstagramConnector {
	return &InstagramConnector{BaseURL: srv.URL, Client: srv.Client()}
}

func TestInstagramProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("path = %q, want /me", r.URL.Path)
		}
		if got := r.URL.Query().Get("access_token"); got != "tok-123" {
			t.Errorf("access_token = %q, want tok-123", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":                  "ig-9",
			"username":            "casey",
			"name":                "Casey",
			"profile_picture_url": "https://cdn/pic.jpg",
		})
	}))
	defer srv.Close()

	p, err := newInstagramAgainst(srv).Profile(context.Background(), &OAuthToken{AccessToken: "tok-123"})
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.PlatformUserID != "ig-9" || p.Username != "casey" || p.Name != "Casey" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestInstagramProfile_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := newInstagramAgainst(srv).Profile(context.Background(), &OAuthToken{AccessToken: "bad"}); err == nil {
		t.Fatal("expected error on 401 response")
	}
}

func TestInstagramPublish_ContainerThenPublish(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/v21.0/ig-9/media":
			var payload map[string]any
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["caption"] != "hello world" {
				t.Errorf("caption = %v", payload["caption"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case "/v21.0/ig-9/media_publish":
			var payload map[string]any
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["creation_id"] != "container-1" {
				t.Errorf("creation_id = %v", payload["creation_id"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "media-7"})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	account := &models.SocialAccount{PlatformUserID: "ig-9", AccessToken: "tok"}
	post := &models.Post{Content: "hello world"}

	id, err := newInstagramAgainst(srv).Publish(context.Background(), account, post)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id != "media-7" {
		t.Fatalf("media id = %q, want media-7", id)
	}
	if len(paths) != 2 {
		t.Fatalf("calls = %v, want container then publish", paths)
	}
}

func TestInstagramPublish_EmptyContainerID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	account := &models.SocialAccount{PlatformUserID: "ig-9", AccessToken: "tok"}
	if _, err := newInstagramAgainst(srv).Publish(context.Background(), account, &models.Post{}); err == nil {
		t.Fatal("expected error when no container id is returned")
	}
}
