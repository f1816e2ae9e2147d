package answer

import (
	"fmt"
	"strings"

	"what-coffee-be/internal/entity"
	"what-coffee-be/pkg/llm"
	"what-coffee-be/pkg/store"
)

// GroundingBuilder assembles the grounding context for the generative call:
// system instructions, serialized candidate summaries, profile fields and a
// bounded window of recent turns.
type GroundingBuilder struct {
	profile    store.Profile
	candidates []entity.RankedCandidate
	turns      []store.Turn
}

// NewGroundingBuilder creates a builder over the current turn's inputs
func NewGroundingBuilder(profile store.Profile, candidates []entity.RankedCandidate, turns []store.Turn) *GroundingBuilder {
	return &GroundingBuilder{
		profile:    profile,
		candidates: candidates,
		turns:      turns,
	}
}

// Build produces the chat history handed to the LLM. The system message
// carries the grounding; the remaining messages replay recent turns.
func (b *GroundingBuilder) Build() []llm.Message {
	messages := make([]llm.Message, 0, len(b.turns)+1)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: b.buildSystemPrompt(),
	})
	for _, turn := range b.turns {
		messages = append(messages, llm.Message{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	return messages
}

func (b *GroundingBuilder) buildSystemPrompt() string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a friendly coffee guide helping the user find coffees from a curated catalog of Indian roasters.\n")
	prompt.WriteString("Recommend ONLY from the catalog items below. Never invent coffees, prices or links.\n")
	prompt.WriteString("Keep answers short and conversational. When recommending, name the roaster and the coffee and say why it fits.\n")
	prompt.WriteString("</task>\n\n")

	b.writeProfile(&prompt)
	b.writeCandidates(&prompt)

	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. If the catalog section is empty, say nothing matched and ask the user to broaden their wishes\n")
	prompt.WriteString("2. Match the user's experience level: skip jargon for novices, go deeper for enthusiasts\n")
	prompt.WriteString("3. Mention the purchase link only when you recommend the item\n")
	prompt.WriteString("</guidelines>\n")

	return prompt.String()
}

func (b *GroundingBuilder) writeProfile(prompt *strings.Builder) {
	prompt.WriteString("<user_profile>\n")
	prompt.WriteString(fmt.Sprintf("experience_level: %s\n", b.profile.ExperienceLevel))
	if len(b.profile.BrewMethods) > 0 {
		prompt.WriteString(fmt.Sprintf("brew_methods: %s\n", strings.Join(b.profile.BrewMethods, ", ")))
	}
	if b.profile.FlavorDescription != "" {
		prompt.WriteString(fmt.Sprintf("flavor_wishes: %s\n", b.profile.FlavorDescription))
	}
	prompt.WriteString("</user_profile>\n\n")
}

func (b *GroundingBuilder) writeCandidates(prompt *strings.Builder) {
	prompt.WriteString("<catalog>\n")
	if len(b.candidates) == 0 {
		prompt.WriteString("(no matching coffees)\n")
	}
	for _, c := range b.candidates {
		prompt.WriteString(FormatCandidate(c.Coffee))
		prompt.WriteString("\n")
	}
	prompt.WriteString("</catalog>\n\n")
}

// FormatCandidate serializes one catalog item for the grounding context.
func FormatCandidate(c *entity.Coffee) string {
	price := ""
	if c.PriceMin > 0 {
		price = fmt.Sprintf("Rs.%d/250g", int(c.PriceMin))
	}
	link := c.AffiliateURL
	if link == "" {
		link = c.SourceURL
	}
	return fmt.Sprintf(
		"- %s | %s | roast:%s | process:%s | origin:%s | flavors:%s | %s | %s",
		c.Roaster,
		c.Name,
		c.RoastLevel,
		c.Process,
		c.Origin,
		strings.Join(c.FlavorNotes, ", "),
		price,
		link,
	)
}
