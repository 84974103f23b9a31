package siteconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"madsag-engine/internal/common/httpclient"
	"madsag-engine/internal/common/logger"
)

// Loader fetches the global single-type once at startup. There is no
// refresh loop: the config changes at CMS deploy cadence, and a restart
// picks it up.
type Loader struct {
	baseURL    string
	apiToken   string
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewLoader(baseURL, apiToken string, timeout time.Duration, log logger.Logger) *Loader {
	return &Loader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: httpclient.NewClient(timeout),
		logger:     log.WithFields(map[string]interface{}{"component": "siteconfig-loader"}),
	}
}

// globalEnvelope mirrors the backend's response for the global single-type
// with deep population. Only the attributes the engine serves are decoded.
type globalEnvelope struct {
	Data struct {
		Attributes struct {
			SiteName   string `json:"siteName"`
			Slogan     string `json:"slogan"`
			FooterText string `json:"footerText"`
			Contact    struct {
				Email string `json:"email"`
				Phone string `json:"phone"`
			} `json:"contact"`
			Logo    mediaRelation `json:"logo"`
			Favicon mediaRelation `json:"favicon"`
			SEO     struct {
				MetaTitle       string        `json:"metaTitle"`
				MetaDescription string        `json:"metaDescription"`
				ShareImage      mediaRelation `json:"shareImage"`
			} `json:"seo"`
		} `json:"attributes"`
	} `json:"data"`
}

type mediaRelation struct {
	Data struct {
		Attributes struct {
			URL             string `json:"url"`
			AlternativeText string `json:"alternativeText"`
		} `json:"attributes"`
	} `json:"data"`
}

func (m mediaRelation) asset(base string) Asset {
	return Asset{
		URL:             absolutize(base, m.Data.Attributes.URL),
		AlternativeText: m.Data.Attributes.AlternativeText,
	}
}

// Load fetches and parses the global config. Any failure returns (nil, err);
// the caller logs it and keeps its built-in defaults. This call must never
// take the service down.
func (l *Loader) Load(ctx context.Context) (*SiteConfig, error) {
	url := fmt.Sprintf("%s/api/global?populate=deep", l.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if l.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+l.apiToken)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch global config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("global config request returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope globalEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode global config: %w", err)
	}

	attrs := envelope.Data.Attributes
	cfg := &SiteConfig{
		SiteName:   attrs.SiteName,
		Slogan:     attrs.Slogan,
		FooterText: attrs.FooterText,
		Contact: Contact{
			Email: attrs.Contact.Email,
			Phone: attrs.Contact.Phone,
		},
		Logo: attrs.Logo.asset(l.baseURL),
		Favicon:  attrs.Favicon.asset(l.baseURL),
		SEO: SEO{
			MetaTitle:       attrs.SEO.MetaTitle,
			MetaDescription: attrs.SEO.MetaDescription,
			ShareImage:      attrs.SEO.ShareImage.asset(l.baseURL),
		},
	}

	l.logger.Info("global config loaded", map[string]interface{}{
		"siteName": cfg.SiteName,
	})
	return cfg, nil
}
