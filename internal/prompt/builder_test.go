package prompt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jasha9/digitaltwin/internal/model"
)

func TestBuild_MessageShape(t *testing.T) {
	b := NewBuilder("Jasha")
	fragments := []model.RetrievedFragment{
		{Title: "Education", Content: "BSc Computer Science, GPA 3.8"},
		{Title: "Skills", Content: "Go, Python, SQL"},
	}
	messages := b.Build("Tell me about your education", fragments, model.ContextClassification{Type: model.QuestionTypeGeneral}, nil)

	require.Len(t, messages, 2)
	require.Equal(t, "system", messages[0].Role)
	require.Equal(t, "user", messages[1].Role)
	require.Contains(t, messages[0].Content, "Jasha's AI digital twin")
	require.Contains(t, messages[1].Content, "Your Information:")
	require.Contains(t, messages[1].Content, "Title: Education")
	require.Contains(t, messages[1].Content, "\n---\n")
	require.Contains(t, messages[1].Content, "Question: Tell me about your education")
}

func TestBuild_BehavioralGetsSTARGuidance(t *testing.T) {
	b := NewBuilder("Jasha")
	behavioral := b.Build("q", nil, model.ContextClassification{Type: model.QuestionTypeBehavioral}, nil)
	require.Contains(t, behavioral[0].Content, "STAR format")

	general := b.Build("q", nil, model.ContextClassification{Type: model.QuestionTypeGeneral}, nil)
	require.NotContains(t, general[0].Content, "STAR format")
}

func TestBuild_WordBudgetByType(t *testing.T) {
	b := NewBuilder("Jasha")
	general := b.Build("q", nil, model.ContextClassification{Type: model.QuestionTypeGeneral}, nil)
	require.Contains(t, general[0].Content, "80-120 words")

	technical := b.Build("q", nil, model.ContextClassification{Type: model.QuestionTypeTechnical}, nil)
	require.Contains(t, technical[0].Content, "150-200 words")
}

func TestBuild_CompanyGuidance(t *testing.T) {
	b := NewBuilder("Jasha")

	company := b.Build("Why do you want to join Xero?", nil, model.ContextClassification{Type: model.QuestionTypeCompany}, nil)
	require.Contains(t, company[0].Content, "Xero")
	require.Contains(t, company[0].Content, "Adventurous")

	technical := b.Build("How would your skills fit the Suncorp engineering team?", nil, model.ContextClassification{Type: model.QuestionTypeTechnical}, nil)
	require.Contains(t, technical[0].Content, "Suncorp Group")
	require.Contains(t, technical[0].Content, "Stay Curious")

	// Guidance is scoped to company and technical questions.
	general := b.Build("Why do you want to join Xero?", nil, model.ContextClassification{Type: model.QuestionTypeGeneral}, nil)
	require.NotContains(t, general[0].Content, "Adventurous")

	// A generic question stays generic.
	generic := b.Build("Why do you want to join our company?", nil, model.ContextClassification{Type: model.QuestionTypeCompany}, nil)
	require.NotContains(t, generic[0].Content, "question concerns")
}

func TestBuild_IndustryGuidance(t *testing.T) {
	b := NewBuilder("Jasha")
	messages := b.Build("What draws you to working on payments infrastructure?", nil, model.ContextClassification{Type: model.QuestionTypeCompany}, nil)
	require.Contains(t, messages[0].Content, "fintech")
	require.Contains(t, messages[0].Content, "compliance")
}

func TestBuild_HistoryTrimmed(t *testing.T) {
	b := NewBuilder("")
	var history []model.ConversationTurn
	for i := 0; i < 10; i++ {
		history = append(history, model.ConversationTurn{Role: "user", Content: fmt.Sprintf("turn %d", i)})
	}
	messages := b.Build("q", nil, model.ContextClassification{}, history)

	require.Contains(t, messages[1].Content, "Previous conversation:")
	require.NotContains(t, messages[1].Content, "turn 3")
	require.Contains(t, messages[1].Content, "turn 4")
	require.Contains(t, messages[1].Content, "turn 9")
}

func TestBuild_MarkdownFlattened(t *testing.T) {
	b := NewBuilder("Jasha")
	fragments := []model.RetrievedFragment{
		{Title: "Projects", Content: "# Heading\n\nSome **bold** text with [a link](https://example.com)."},
	}
	messages := b.Build("q", fragments, model.ContextClassification{}, nil)

	require.Contains(t, messages[1].Content, "Heading")
	require.Contains(t, messages[1].Content, "bold")
	require.NotContains(t, messages[1].Content, "**")
	require.NotContains(t, messages[1].Content, "](")
}

func TestBuild_DefaultPersona(t *testing.T) {
	b := NewBuilder("   ")
	messages := b.Build("q", nil, model.ContextClassification{}, nil)
	require.Contains(t, messages[0].Content, "the candidate")
}
