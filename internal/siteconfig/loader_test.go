package siteconfig

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madsag-engine/internal/common/logger"
)

const globalResponse = `{
  "data": {
    "id": 1,
    "attributes": {
      "siteName": "MADSAG",
      "slogan": "ENGINEERING MARKET DOMINANCE",
      "footerText": "© MADSAG. All rights reserved.",
      "contact": {"email": "hello@madsag.com", "phone": "+919876543210"},
      "logo": {"data": {"attributes": {"url": "/uploads/logo.png", "alternativeText": "MADSAG logo"}}},
      "favicon": {"data": {"attributes": {"url": "/uploads/favicon.ico"}}},
      "seo": {
        "metaTitle": "MADSAG | Digital Agency",
        "metaDescription": "Full-service digital engineering.",
        "shareImage": {"data": {"attributes": {"url": "https://cdn.example.com/share.png"}}}
      }
    }
  }
}`

type metadataRecorder struct {
	title       string
	description string
	favicon     string
}

func (m *metadataRecorder) SetTitle(v string)       { m.title = v }
func (m *metadataRecorder) SetDescription(v string) { m.description = v }
func (m *metadataRecorder) SetFavicon(v string)     { m.favicon = v }

func TestLoad_ParsesAndAbsolutizesAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/global", r.URL.Path)
		assert.Equal(t, "deep", r.URL.Query().Get("populate"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(globalResponse))
	}))
	defer server.Close()

	loader := NewLoader(server.URL, "test-token", 5*time.Second, logger.NewTestLogger(t))
	cfg, err := loader.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "MADSAG", cfg.SiteName)
	assert.Equal(t, "ENGINEERING MARKET DOMINANCE", cfg.Slogan)
	assert.Equal(t, "© MADSAG. All rights reserved.", cfg.FooterText)
	assert.Equal(t, "hello@madsag.com", cfg.Contact.Email)
	assert.Equal(t, server.URL+"/uploads/logo.png", cfg.Logo.URL)
	assert.Equal(t, "MADSAG logo", cfg.Logo.AlternativeText)
	assert.Equal(t, server.URL+"/uploads/favicon.ico", cfg.Favicon.URL)
	// Already-absolute URLs pass through untouched.
	assert.Equal(t, "https://cdn.example.com/share.png", cfg.SEO.ShareImage.URL)
}

func TestLoad_FailuresReturnNilConfig(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		close   bool
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, false},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, false},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": [`))
		}, false},
		{"unreachable", func(w http.ResponseWriter, r *http.Request) {}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			if tt.close {
				server.Close()
			} else {
				defer server.Close()
			}

			loader := NewLoader(server.URL, "", time.Second, logger.NewNoOpLogger())
			cfg, err := loader.Load(context.Background())

			require.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestApply_PushesSEODefaults(t *testing.T) {
	cfg := &SiteConfig{
		Favicon: Asset{URL: "https://example.com/favicon.ico"},
		SEO: SEO{
			MetaTitle:       "MADSAG | Digital Agency",
			MetaDescription: "Full-service digital engineering.",
		},
	}

	meta := &metadataRecorder{title: "fallback", description: "fallback", favicon: "fallback"}
	cfg.Apply(meta)

	assert.Equal(t, "MADSAG | Digital Agency", meta.title)
	assert.Equal(t, "Full-service digital engineering.", meta.description)
	assert.Equal(t, "https://example.com/favicon.ico", meta.favicon)
}

func TestApply_SkipsEmptyValues(t *testing.T) {
	cfg := &SiteConfig{}
	meta := &metadataRecorder{title: "kept", description: "kept", favicon: "kept"}
	cfg.Apply(meta)

	assert.Equal(t, "kept", meta.title)
	assert.Equal(t, "kept", meta.description)
	assert.Equal(t, "kept", meta.favicon)
}
