package classify

import (
	"strings"
	"time"
	"unicode"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jasha9/digitaltwin/internal/model"
)

// Keyword families per question type. Sub-categories are flattened into one
// list per family; the counts below are per-family match totals.
var typeFamilies = map[model.QuestionType][]string{
	model.QuestionTypeTechnical: {
		// programming
		"programming", "code", "coding", "language", "python", "javascript", "typescript", "golang", "java",
		"framework", "react", "node", "algorithm", "debug", "testing",
		// system design
		"architecture", "design", "scalability", "database", "api", "microservice", "distributed", "cache", "queue",
		// operations
		"deploy", "deployment", "docker", "kubernetes", "cloud", "aws", "ci", "cd", "pipeline", "monitoring", "infrastructure",
	},
	model.QuestionTypeBehavioral: {
		"teamwork", "team", "conflict", "challenge", "leadership", "lead", "mentor", "communication",
		"disagree", "mistake", "failure", "pressure", "deadline", "prioritize", "feedback", "strength",
		"weakness", "motivate", "collaborate", "situation", "handled",
	},
	model.QuestionTypeCompany: {
		"company", "culture", "values", "why us", "team fit", "industry", "business", "product",
		"mission", "role", "position", "salary", "relocate", "notice period", "join", "hire",
	},
}

var complexityCues = map[model.Complexity][]string{
	model.ComplexityBeginner:     {"what is", "explain", "basics", "basic", "introduction", "simple", "overview", "tell me about"},
	model.ComplexityIntermediate: {"how do", "how did", "compare", "difference", "example", "implement", "approach"},
	model.ComplexityAdvanced:     {"optimize", "tradeoff", "trade-off", "scale", "architecture", "concurrency", "distributed", "performance", "bottleneck", "internals"},
}

var interrogatives = []string{"what", "why", "how", "when", "where", "which", "who", "describe", "tell", "explain"}

// Classifier labels questions by type, complexity and topics. It is a
// keyword heuristic, not a model; results are memoized because the same
// question text recurs across cache tiers and quality scoring.
type Classifier struct {
	memo *expirable.LRU[string, model.ContextClassification]
}

func NewClassifier() *Classifier {
	return &Classifier{
		memo: expirable.NewLRU[string, model.ContextClassification](2048, nil, 2*time.Hour),
	}
}

func (c *Classifier) Classify(question string) model.ContextClassification {
	lower := strings.ToLower(strings.TrimSpace(question))
	if cached, ok := c.memo.Get(lower); ok {
		return cached
	}
	result := classifyText(lower)
	c.memo.Add(lower, result)
	return result
}

func classifyText(lower string) model.ContextClassification {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	wordCount := len(words)

	var topics []string
	seen := map[string]bool{}
	counts := map[model.QuestionType]int{}
	for family, keywords := range typeFamilies {
		for _, keyword := range keywords {
			if matchesCue(lower, keyword) {
				counts[family]++
				if !seen[keyword] {
					seen[keyword] = true
					topics = append(topics, keyword)
				}
			}
		}
	}

	qType := model.QuestionTypeGeneral
	best := 0
	tied := false
	for _, family := range []model.QuestionType{model.QuestionTypeTechnical, model.QuestionTypeBehavioral, model.QuestionTypeCompany} {
		n := counts[family]
		if n > best {
			best = n
			qType = family
			tied = false
		} else if n == best && n > 0 {
			tied = true
		}
	}
	if best == 0 || tied {
		qType = model.QuestionTypeGeneral
	}

	confidence := confidenceScore(best, wordCount, lower)
	complexity := complexityScore(lower, wordCount, counts[model.QuestionTypeTechnical])

	return model.ContextClassification{
		Type:       qType,
		Complexity: complexity,
		Topics:     topics,
		Confidence: confidence,
	}
}

func confidenceScore(matches, wordCount int, lower string) float64 {
	base := float64(matches) / 3
	if base > 1 {
		base = 1
	}
	density := 0.0
	if wordCount > 0 {
		density = float64(matches) / float64(wordCount) * 5
		if density > 1 {
			density = 1
		}
	}
	interrogative := 0.0
	for _, word := range interrogatives {
		if strings.HasPrefix(lower, word) {
			interrogative = 1
			break
		}
	}
	score := 0.6*base + 0.3*density + 0.1*interrogative
	if score > 1 {
		score = 1
	}
	return score
}

// matchesCue reports whether cue occurs in text on word boundaries. Plain
// substring search lets short cues like "ci" fire inside unrelated words.
// Multi-word cues match as written; their inner spaces are literal.
func matchesCue(text, cue string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], cue)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(cue)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func complexityScore(lower string, wordCount, technicalMatches int) model.Complexity {
	scores := map[model.Complexity]int{}
	for level, cues := range complexityCues {
		for _, cue := range cues {
			if matchesCue(lower, cue) {
				scores[level]++
			}
		}
	}
	// Length and technical density nudges.
	if wordCount > 15 {
		scores[model.ComplexityAdvanced]++
	}
	if wordCount > 0 && wordCount < 8 {
		scores[model.ComplexityBeginner]++
	}
	if wordCount > 0 && float64(technicalMatches)/float64(wordCount) > 0.3 {
		scores[model.ComplexityAdvanced]++
	}

	result := model.ComplexityIntermediate
	best := 0
	for _, level := range []model.Complexity{model.ComplexityAdvanced, model.ComplexityIntermediate, model.ComplexityBeginner} {
		if scores[level] > best {
			best = scores[level]
			result = level
		}
	}
	if best == 0 {
		return model.ComplexityIntermediate
	}
	return result
}
