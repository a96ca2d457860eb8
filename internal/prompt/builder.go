package prompt

import (
	"fmt"
	"strings"

	"github.com/jasha9/digitaltwin/internal/ai"
	"github.com/jasha9/digitaltwin/internal/model"
)

const maxHistoryTurns = 6

// Builder assembles the system and user messages sent to the generation
// coordinator.
type Builder struct {
	personaName string
}

func NewBuilder(personaName string) *Builder {
	if strings.TrimSpace(personaName) == "" {
		personaName = "the candidate"
	}
	return &Builder{personaName: personaName}
}

// Build renders fragments, classification and history into chat messages.
// Fragment content is flattened from markdown to plain text so formatting
// noise never leaks into the model context.
func (b *Builder) Build(question string, fragments []model.RetrievedFragment, cls model.ContextClassification, history []model.ConversationTurn) []ai.Message {
	return []ai.Message{
		{Role: "system", Content: b.systemPrompt(question, cls)},
		{Role: "user", Content: b.userPrompt(question, fragments, history)},
	}
}

func (b *Builder) systemPrompt(question string, cls model.ContextClassification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s's AI digital twin. Answer questions about %s's professional background, skills, experience, and qualifications based on the provided context.\n\n", b.personaName, b.personaName)
	sb.WriteString("Be conversational and personal, as if you are ")
	sb.WriteString(b.personaName)
	sb.WriteString(" speaking about yourself. Use \"I\" and \"my\" when referring to experiences and achievements. Provide specific examples and details from the context. Do not invent facts that are not in the context.")
	if cls.Type == model.QuestionTypeBehavioral {
		sb.WriteString("\n\nFor behavioral interview questions, structure the answer in STAR format (Situation, Task, Action, Result) when appropriate.")
	}
	if cls.Type == model.QuestionTypeCompany || cls.Type == model.QuestionTypeTechnical {
		if guidance := companyGuidance(question); guidance != "" {
			sb.WriteString("\n\n")
			sb.WriteString(guidance)
		}
	}
	switch cls.Type {
	case model.QuestionTypeGeneral:
		sb.WriteString("\n\nKeep the answer concise, around 80-120 words.")
	default:
		sb.WriteString("\n\nKeep the answer focused, around 150-200 words.")
	}
	return sb.String()
}

func (b *Builder) userPrompt(question string, fragments []model.RetrievedFragment, history []model.ConversationTurn) string {
	var sb strings.Builder

	if len(history) > 0 {
		if len(history) > maxHistoryTurns {
			history = history[len(history)-maxHistoryTurns:]
		}
		sb.WriteString("Previous conversation:\n")
		for _, turn := range history {
			role := turn.Role
			if role == "" {
				role = "user"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, strings.TrimSpace(turn.Content))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Your Information:\n")
	blocks := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s", fragment.Title, flattenMarkdown(fragment.Content)))
	}
	sb.WriteString(strings.Join(blocks, "\n---\n"))

	fmt.Fprintf(&sb, "\n\nQuestion: %s\n\nProvide a helpful, professional response:", strings.TrimSpace(question))
	return sb.String()
}
