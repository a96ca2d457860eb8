package relevance

import "strings"

// Verdict is produced once per question and consumed only by the query
// orchestrator.
type Verdict struct {
	IsRelevant     bool
	RedirectAnswer string
}

// Off-topic keyword families. Each family carries its own redirect so the
// answer can acknowledge what was asked before steering back.
var offTopicFamilies = []struct {
	family   string
	keywords []string
	redirect string
}{
	{
		family:   "cooking",
		keywords: []string{"recipe", "cooking", "cook", "pasta", "baking", "bake", "cuisine", "dish", "ingredient", "meal", "restaurant", "food"},
		redirect: "I'd love to chat about food another time, but I'm here to talk about my professional background. Feel free to ask about my skills, projects, or work experience!",
	},
	{
		family:   "sports",
		keywords: []string{"football", "soccer", "cricket", "basketball", "tennis", "sport", "sports", "match", "tournament", "workout", "gym"},
		redirect: "Sports aren't really my area here - I'm focused on my professional profile. Ask me about my technical skills, education, or the projects I've built!",
	},
	{
		family:   "travel",
		keywords: []string{"travel", "vacation", "holiday", "trip", "tourist", "flight", "hotel", "beach", "sightseeing"},
		redirect: "Travel plans are off-topic for me - I'm your guide to my professional journey instead. Ask about my experience, qualifications, or career goals!",
	},
	{
		family:   "entertainment",
		keywords: []string{"movie", "film", "music", "song", "celebrity", "netflix", "game", "gaming", "anime", "tv show"},
		redirect: "I'll pass on entertainment talk - my focus is my professional story. Happy to cover my skills, projects, or work history!",
	},
}

const genericRedirect = "That's outside what I can help with - I answer questions about my professional background. Try asking about my skills, experience, education, or projects!"

// Professional/technical/academic cues. If any of these appear the question
// is allowed through even when off-topic keywords are also present: wrongly
// blocking a relevant question costs far more than one extra retrieval.
var relevantKeywords = []string{
	"experience", "skill", "skills", "project", "projects", "work", "job", "career",
	"education", "degree", "university", "study", "studies", "gpa", "certification",
	"programming", "developer", "engineer", "engineering", "software", "technical",
	"technology", "code", "coding", "language", "languages", "framework", "database",
	"cloud", "backend", "frontend", "api", "internship", "achievement", "qualification",
	"strength", "weakness", "team", "leadership", "interview", "company", "role",
	"salary", "resume", "portfolio", "mentor", "mentoring", "professional",
}

// Check scans the question against both keyword sets. Pure function, no I/O.
func Check(question string) Verdict {
	lower := strings.ToLower(question)

	for _, keyword := range relevantKeywords {
		if containsWord(lower, keyword) {
			return Verdict{IsRelevant: true}
		}
	}
	for _, family := range offTopicFamilies {
		for _, keyword := range family.keywords {
			if containsWord(lower, keyword) {
				return Verdict{IsRelevant: false, RedirectAnswer: family.redirect}
			}
		}
	}
	return Verdict{IsRelevant: true}
}

// GenericRedirect is used when a question is rejected by other means but no
// family-specific redirect applies.
func GenericRedirect() string {
	return genericRedirect
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
