// Package catalog holds the fixed content tables the rest of the engine
// keys off: service offerings, their section ids, and plan names. The set
// is fixed at build time; only the active section changes at runtime.
package catalog

// ServiceType is the closed enumeration of offerings a lead can enquire
// about. "General" covers enquiries not tied to a specific offering.
type ServiceType string

const (
	ServiceWebsiteDesign        ServiceType = "Website Design"
	ServicePerformanceMarketing ServiceType = "Performance Marketing"
	ServiceLandingPage          ServiceType = "Landing Page Development"
	ServiceShopify              ServiceType = "Shopify E-commerce Development"
	ServiceGeneral              ServiceType = "General"
)

// Service describes one offering and its section on the page.
type Service struct {
	ID    string
	Name  ServiceType
	Plans []string
}

// Services lists every offering in page order. Section ids double as the
// DOM ids the browser reports visibility for.
var Services = []Service{
	{
		ID:    "website-design",
		Name:  ServiceWebsiteDesign,
		Plans: []string{"Sigma Architecture", "Atlas Build", "Titan Scale"},
	},
	{
		ID:    "performance-marketing",
		Name:  ServicePerformanceMarketing,
		Plans: []string{"Launch Campaign", "Growth Engine"},
	},
	{
		ID:    "landing-page",
		Name:  ServiceLandingPage,
		Plans: []string{"Single Conversion Page", "Funnel Set"},
	},
	{
		ID:    "shopify-development",
		Name:  ServiceShopify,
		Plans: []string{"Storefront Setup", "Full Commerce Build"},
	},
}

// FAQTopics lists the question categories shown in the faq section.
var FAQTopics = []string{
	"Pricing & Engagement",
	"Project Timelines",
	"Technology Stack",
	"Support & Maintenance",
}

// SectionIDs lists every trackable section in page order: hero first,
// then the service sections, then the shared sections.
var SectionIDs = func() []string {
	ids := []string{"hero"}
	for _, s := range Services {
		ids = append(ids, s.ID)
	}
	return append(ids, "portfolio", "process", "tech-stack", "faq", "blog", "cta")
}()

// ServiceBySection maps a section id to its offering. Sections without an
// offering (hero, faq, ...) are absent.
func ServiceBySection(sectionID string) (Service, bool) {
	for _, s := range Services {
		if s.ID == sectionID {
			return s, true
		}
	}
	return Service{}, false
}

// ServiceByName resolves an offering from its display name.
func ServiceByName(name ServiceType) (Service, bool) {
	for _, s := range Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// ValidSubjectBase reports whether the given subject prefix is a declared
// offering or the general category.
func ValidSubjectBase(name string) bool {
	if ServiceType(name) == ServiceGeneral {
		return true
	}
	_, ok := ServiceByName(ServiceType(name))
	return ok
}
