// Package cta composes the context-sensitive WhatsApp deep link shown on
// every page. The topic tracks the section the visitor is currently
// reading.
package cta

import (
	"fmt"
	"net/url"

	"madsag-engine/internal/catalog"
)

// GenericTopic is used whenever the active section has no offering of its
// own, or no section is active yet.
const GenericTopic = "Digital"

// DefaultTemplate must contain two %s verbs: topic, then brand name.
const DefaultTemplate = "I want to discuss %s solutions with the %s team. Please assist."

// Router derives the outbound chat link from the active section id.
type Router struct {
	phoneNumber string
	brandName   string
	template    string
	topics      map[string]string
}

func NewRouter(phoneNumber, brandName, template string) *Router {
	if template == "" {
		template = DefaultTemplate
	}

	topics := make(map[string]string, len(catalog.Services))
	for _, s := range catalog.Services {
		topics[s.ID] = string(s.Name)
	}

	return &Router{
		phoneNumber: phoneNumber,
		brandName:   brandName,
		template:    template,
		topics:      topics,
	}
}

// Topic resolves the human-readable label for a section id, falling back
// to the generic label for unknown or empty ids.
func (r *Router) Topic(activeSectionID string) string {
	if label, ok := r.topics[activeSectionID]; ok {
		return label
	}
	return GenericTopic
}

// Link composes the wa.me deep link for the given active section. The
// result is always a valid URL, even with no active section.
func (r *Router) Link(activeSectionID string) string {
	message := fmt.Sprintf(r.template, r.Topic(activeSectionID), r.brandName)
	return fmt.Sprintf("https://wa.me/%s?text=%s", r.phoneNumber, url.QueryEscape(message))
}
