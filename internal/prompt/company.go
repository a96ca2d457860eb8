package prompt

import (
	"fmt"
	"strings"
)

// Company research table. When an interviewer names one of these employers
// in the question, the system prompt is extended so the answer can speak to
// that company's stack and values instead of staying generic.
type companyProfile struct {
	keys     []string
	name     string
	industry string
	tech     []string
	values   []string
}

var knownCompanies = []companyProfile{
	{
		keys:     []string{"suncorp"},
		name:     "Suncorp Group",
		industry: "financial services and insurance",
		tech:     []string{"Java", "Python", "AWS", "microservices", "React"},
		values:   []string{"Customer First", "Own It", "Be Bold", "Stay Curious"},
	},
	{
		keys:     []string{"flight centre", "flight_centre"},
		name:     "Flight Centre Travel Group",
		industry: "travel technology",
		tech:     []string{"Java", "JavaScript", "React", "Node.js", "AWS"},
		values:   []string{"People First", "Customer Focused", "Bright Future", "Ownership"},
	},
	{
		keys:     []string{"xero"},
		name:     "Xero",
		industry: "fintech SaaS",
		tech:     []string{"C#", "React", "AWS", "TypeScript", "GraphQL"},
		values:   []string{"Human", "Purposeful", "Adventurous"},
	},
	{
		keys:     []string{"technologyone", "technology one"},
		name:     "TechnologyOne",
		industry: "enterprise SaaS",
		tech:     []string{"Java", "React", "Angular", "AWS", "REST APIs"},
		values:   []string{"Innovation", "Quality", "Service", "People"},
	},
}

type industryProfile struct {
	name     string
	keywords []string
	emphasis []string
}

var knownIndustries = []industryProfile{
	{
		name:     "fintech",
		keywords: []string{"financial", "banking", "payments", "investment", "trading"},
		emphasis: []string{"security", "scalability", "compliance", "data analytics"},
	},
	{
		name:     "consulting",
		keywords: []string{"consulting", "advisory", "transformation", "strategy"},
		emphasis: []string{"client solutions", "adaptability", "communication"},
	},
	{
		name:     "startup",
		keywords: []string{"startup", "scale-up", "growth mindset", "early-stage"},
		emphasis: []string{"rapid development", "MVP iteration", "ownership"},
	},
}

// companyGuidance returns extra system-prompt guidance when the question
// names a researched company, or failing that an industry we have notes
// for. Empty string when the question stays generic.
func companyGuidance(question string) string {
	lower := strings.ToLower(question)
	for _, company := range knownCompanies {
		if !mentionsCompany(lower, company) {
			continue
		}
		return fmt.Sprintf(
			"The question concerns %s, a %s company. Where the context supports it, relate the answer to their world: their stack includes %s, and their stated values are %s. Mention overlap with your own experience honestly; never claim experience the context does not back.",
			company.name, company.industry,
			strings.Join(company.tech, ", "),
			strings.Join(company.values, ", "),
		)
	}
	for _, industry := range knownIndustries {
		for _, keyword := range industry.keywords {
			if strings.Contains(lower, keyword) {
				return fmt.Sprintf(
					"The question has a %s angle. Where the context supports it, emphasize %s.",
					industry.name, strings.Join(industry.emphasis, ", "),
				)
			}
		}
	}
	return ""
}

func mentionsCompany(lower string, company companyProfile) bool {
	if strings.Contains(lower, strings.ToLower(company.name)) {
		return true
	}
	for _, key := range company.keys {
		if strings.Contains(lower, key) {
			return true
		}
	}
	return false
}
