// Package leads owns the lead record, its client-side validation, and the
// submission client for the CMS backend's leads collection.
package leads

import (
	"regexp"
	"strings"
)

// MinDescriptionLength is enforced client-side before any network call.
const MinDescriptionLength = 15

// ProjectType is the closed enumeration replacing the free-text project
// type. Adding a type is a single entry here plus, when it needs one, a
// row in extraFieldByProjectType.
type ProjectType string

const (
	ProjectWebsite   ProjectType = "website"
	ProjectLanding   ProjectType = "landing"
	ProjectEcommerce ProjectType = "ecommerce"
	ProjectMarketing ProjectType = "marketing"
	ProjectGeneral   ProjectType = "general"
)

// extraFieldByProjectType maps a project type to the otherwise-optional
// field it makes mandatory. Types without an entry require nothing extra.
var extraFieldByProjectType = map[ProjectType]string{
	ProjectEcommerce: "url",    // existing storefront to migrate
	ProjectMarketing: "budget", // media spend drives the proposal
}

var knownProjectTypes = map[ProjectType]bool{
	ProjectWebsite:   true,
	ProjectLanding:   true,
	ProjectEcommerce: true,
	ProjectMarketing: true,
	ProjectGeneral:   true,
}

// Record is one prospective client inquiry. JSON tags are the backend's
// exact collection attribute names and are a hard contract: a renamed or
// re-cased key fails server-side validation.
//
// Phone stays a string on the wire. The backend stores it as text; parsing
// it as an integer would overflow 32-bit ranges on real phone numbers.
type Record struct {
	FullName        string      `json:"FullName"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	Subject         string      `json:"subject"`
	Description     string      `json:"description"`
	ProjectType     ProjectType `json:"projectType,omitempty"`
	Budget          string      `json:"budget,omitempty"`
	URL             string      `json:"url,omitempty"`
	WhatsAppConsent bool        `json:"whatsappConsent,omitempty"`
}

// NewRecord returns an empty record, optionally pre-populated with the
// subject for a preselected service and plan.
func NewRecord(service, plan string) *Record {
	return &Record{
		Subject:         Subject(service, plan),
		WhatsAppConsent: true,
	}
}

// Subject concatenates a preselected service and plan into the subject
// field value, "service - plan" when both are given.
func Subject(service, plan string) string {
	if service == "" {
		return ""
	}
	if plan == "" {
		return service
	}
	return service + " - " + plan
}

// SubjectBase returns the service/category portion of a subject value.
func SubjectBase(subject string) string {
	if idx := strings.Index(subject, " - "); idx >= 0 {
		return subject[:idx]
	}
	return subject
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize trims and canonicalizes user input in place. Phone keeps only
// digits and a leading plus, matching what the backend's text column
// expects.
func (r *Record) Normalize() {
	r.FullName = whitespaceRun.ReplaceAllString(strings.TrimSpace(r.FullName), " ")
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = sanitizePhone(r.Phone)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Description = strings.TrimSpace(r.Description)
	r.Budget = strings.TrimSpace(r.Budget)
	r.URL = strings.TrimSpace(r.URL)
}

var nonPhone = regexp.MustCompile(`[^\d\+]`)

func sanitizePhone(phone string) string {
	return nonPhone.ReplaceAllString(strings.TrimSpace(phone), "")
}

// WirePayload builds the exact object posted inside the backend envelope.
// Only declared attributes appear; optional attributes are omitted when
// empty rather than sent as empty strings.
func (r *Record) WirePayload() map[string]interface{} {
	payload := map[string]interface{}{
		"FullName":    r.FullName,
		"email":       r.Email,
		"phone":       r.Phone,
		"subject":     r.Subject,
		"description": r.Description,
	}
	if r.ProjectType != "" {
		payload["projectType"] = string(r.ProjectType)
	}
	if r.Budget != "" {
		payload["budget"] = r.Budget
	}
	if r.URL != "" {
		payload["url"] = r.URL
	}
	if r.WhatsAppConsent {
		payload["whatsappConsent"] = true
	}
	return payload
}
