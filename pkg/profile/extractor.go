package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"what-coffee-be/pkg/llm"
	"what-coffee-be/pkg/store"
)

// historyWindow bounds how much conversation the extraction prompt carries.
const historyWindow = 6

// Extractor turns the latest user message into a partial profile update.
// Extraction is best-effort: any upstream or parse failure yields a no-op
// update so the conversation is never blocked.
type Extractor struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
	timeout     time.Duration
}

// NewExtractor creates a new profile extractor
func NewExtractor(llmProvider llm.LLMProvider, logger *log.Logger, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		llmProvider: llmProvider,
		logger:      logger,
		timeout:     timeout,
	}
}

// Extract analyzes the latest user message against recent history and
// produces a ProfileUpdate. Never returns an error; failures log and
// degrade to the zero update.
func (e *Extractor) Extract(ctx context.Context, history []store.Turn, latest string) store.ProfileUpdate {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := e.buildPrompt(history, latest)

	// Temperature 0 for deterministic structured output
	response, err := e.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		e.logger.Printf("[ERROR] Profile extraction failed: %v", err)
		return store.ProfileUpdate{}
	}

	update, err := parseUpdate(response)
	if err != nil {
		e.logger.Printf("[WARN] Profile parsing failed, skipping update: %v", err)
		return store.ProfileUpdate{}
	}

	e.logger.Printf("[PROFILE] Extracted: level=%s methods=%v flavor=%q",
		update.ExperienceLevel, update.BrewMethods, update.FlavorDescription)

	return update
}

func (e *Extractor) buildPrompt(history []store.Turn, latest string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a preference analyzer for a coffee recommendation service.\n")
	prompt.WriteString("Your ONLY job is to extract what the user told us about their coffee preferences.\n")
	prompt.WriteString("You do NOT answer the user. You only emit structured data.\n")
	prompt.WriteString("</system>\n\n")

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) > 0 {
		prompt.WriteString("<conversation>\n")
		for _, turn := range history {
			prompt.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
		}
		prompt.WriteString("</conversation>\n\n")
	}

	prompt.WriteString("<latest_message>\n")
	prompt.WriteString(latest)
	prompt.WriteString("\n</latest_message>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY a JSON object, no prose, no code fences:\n")
	prompt.WriteString(`{"experience_level": "novice|casual|enthusiast|unknown", "brew_methods": ["espresso", ...], "flavor_description": "free text or empty"}`)
	prompt.WriteString("\n")
	prompt.WriteString("Rules:\n")
	prompt.WriteString("- experience_level: only set when the user stated or clearly implied it, otherwise \"unknown\"\n")
	prompt.WriteString("- brew_methods: equipment mentioned in the LATEST message only, lowercase, e.g. espresso, pour over, french press, aeropress, moka pot, cold brew, south indian filter\n")
	prompt.WriteString("- flavor_description: the user's flavor wishes in their own words; empty string when none\n")
	prompt.WriteString("</output_format>\n")

	return prompt.String()
}

// parseUpdate defensively extracts the JSON object from the model output.
// Models wrap JSON in code fences or prose often enough that we search for
// the outermost braces instead of unmarshalling the raw response.
func parseUpdate(response string) (store.ProfileUpdate, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return store.ProfileUpdate{}, fmt.Errorf("no JSON object in response")
	}

	var update store.ProfileUpdate
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &update); err != nil {
		return store.ProfileUpdate{}, fmt.Errorf("unmarshal update: %w", err)
	}

	// An unexpected enum value degrades to unknown rather than poisoning the profile
	switch strings.ToLower(strings.TrimSpace(update.ExperienceLevel)) {
	case store.ExperienceNovice, store.ExperienceCasual, store.ExperienceEnthusiast:
	default:
		update.ExperienceLevel = store.ExperienceUnknown
	}

	return update, nil
}
