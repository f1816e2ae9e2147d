package profile

import (
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"strings"
	"testing"
	"time"

	"what-coffee-be/pkg/llm"
	"what-coffee-be/pkg/store"
)

// fakeLLM serves Generate from a canned response or error.
type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, onChunk llm.StreamHandler, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func newTestExtractor(provider llm.LLMProvider) *Extractor {
	return NewExtractor(provider, log.New(io.Discard, "", 0), time.Second)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     store.ProfileUpdate
	}{
		{
			name:     "clean JSON",
			response: `{"experience_level": "novice", "brew_methods": ["french press"], "flavor_description": "chocolatey"}`,
			want: store.ProfileUpdate{
				ExperienceLevel:   store.ExperienceNovice,
				BrewMethods:       []string{"french press"},
				FlavorDescription: "chocolatey",
			},
		},
		{
			name:     "JSON wrapped in code fences",
			response: "```json\n{\"experience_level\": \"casual\", \"brew_methods\": [], \"flavor_description\": \"\"}\n```",
			want:     store.ProfileUpdate{ExperienceLevel: store.ExperienceCasual, BrewMethods: []string{}},
		},
		{
			name:     "JSON buried in prose",
			response: `Sure! Here is the extraction: {"experience_level": "enthusiast", "brew_methods": ["espresso"], "flavor_description": "bright acidity"} Hope that helps.`,
			want: store.ProfileUpdate{
				ExperienceLevel:   store.ExperienceEnthusiast,
				BrewMethods:       []string{"espresso"},
				FlavorDescription: "bright acidity",
			},
		},
		{
			name:     "unexpected enum degrades to unknown",
			response: `{"experience_level": "expert", "brew_methods": [], "flavor_description": ""}`,
			want:     store.ProfileUpdate{ExperienceLevel: store.ExperienceUnknown, BrewMethods: []string{}},
		},
		{
			name:     "garbage output is a no-op",
			response: "I could not determine anything from that message.",
			want:     store.ProfileUpdate{},
		},
		{
			name:     "malformed JSON is a no-op",
			response: `{"experience_level": "novice", "brew_methods": [unquoted]}`,
			want:     store.ProfileUpdate{},
		},
		{
			name: "upstream failure is a no-op",
			err:  errors.New("connection refused"),
			want: store.ProfileUpdate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(&fakeLLM{response: tt.response, err: tt.err})
			got := e.Extract(context.Background(), nil, "some user message")

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildPromptWindowsHistory(t *testing.T) {
	e := newTestExtractor(&fakeLLM{})

	var history []store.Turn
	for i := 0; i < 10; i++ {
		history = append(history, store.Turn{Role: store.RoleUser, Content: "message"})
	}
	history[0].Content = "OLDEST"

	prompt := e.buildPrompt(history, "latest")
	if strings.Contains(prompt, "OLDEST") {
		t.Error("prompt includes turns beyond the history window")
	}
	if !strings.Contains(prompt, "<latest_message>\nlatest") {
		t.Error("prompt is missing the latest message section")
	}
}
