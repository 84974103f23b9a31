// Package siteconfig loads the CMS backend's global single-type: brand
// identity, SEO defaults, and shared assets.
package siteconfig

import "strings"

// Asset is one uploaded media file referenced by the global config.
type Asset struct {
	URL             string `json:"url"`
	AlternativeText string `json:"alternativeText,omitempty"`
}

// SEO carries the default page metadata for pages that do not set their own.
type SEO struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	ShareImage      Asset  `json:"shareImage"`
}

// Contact is the agency's public contact block.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// SiteConfig is the parsed global single-type. All asset URLs are absolute
// by the time a SiteConfig leaves the loader.
type SiteConfig struct {
	SiteName   string  `json:"siteName"`
	Slogan     string  `json:"slogan"`
	FooterText string  `json:"footerText,omitempty"`
	Contact    Contact `json:"contact"`
	Logo       Asset   `json:"logo"`
	Favicon    Asset   `json:"favicon"`
	SEO        SEO     `json:"seo"`
}

// PageMetadata receives the SEO defaults once the global config loads.
// The server's site endpoint implements it; tests use a double.
type PageMetadata interface {
	SetTitle(title string)
	SetDescription(description string)
	SetFavicon(url string)
}

// Apply pushes the loaded defaults into meta. Empty values are skipped so
// an incomplete CMS record never blanks out what is already set.
func (c *SiteConfig) Apply(meta PageMetadata) {
	if c.SEO.MetaTitle != "" {
		meta.SetTitle(c.SEO.MetaTitle)
	}
	if c.SEO.MetaDescription != "" {
		meta.SetDescription(c.SEO.MetaDescription)
	}
	if c.Favicon.URL != "" {
		meta.SetFavicon(c.Favicon.URL)
	}
}

// absolutize prefixes base onto relative upload paths. Absolute URLs pass
// through untouched.
func absolutize(base, url string) string {
	if url == "" || strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(url, "/")
}
