package store

import (
	"strings"
	"time"
)

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Experience levels inferred from conversation
const (
	ExperienceNovice     = "novice"
	ExperienceCasual     = "casual"
	ExperienceEnthusiast = "enthusiast"
	ExperienceUnknown    = "unknown"
)

// Turn is a single message in a conversation. Immutable once appended.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Profile holds the structured preferences accumulated across a session.
type Profile struct {
	ExperienceLevel   string    `json:"experience_level"`
	BrewMethods       []string  `json:"brew_methods"`
	FlavorDescription string    `json:"flavor_description"`
	LastUpdated       time.Time `json:"last_updated"`
}

// ProfileUpdate is a partial extraction result to be merged into a Profile.
// The zero value is a no-op.
type ProfileUpdate struct {
	ExperienceLevel   string   `json:"experience_level"`
	BrewMethods       []string `json:"brew_methods"`
	FlavorDescription string   `json:"flavor_description"`
}

// IsZero reports whether applying the update would never change any profile.
func (u ProfileUpdate) IsZero() bool {
	return (u.ExperienceLevel == "" || u.ExperienceLevel == ExperienceUnknown) &&
		len(u.BrewMethods) == 0 &&
		u.FlavorDescription == ""
}

// NewProfile returns an empty profile with the experience level unknown.
func NewProfile() Profile {
	return Profile{ExperienceLevel: ExperienceUnknown}
}

// Merge applies an extraction result to the profile.
// Enum fields overwrite only with a known value, brew methods are unioned,
// the flavor description is replaced by the newest non-empty value.
// Applying the same update twice leaves the profile unchanged.
func (p *Profile) Merge(u ProfileUpdate, now time.Time) bool {
	changed := false

	if lvl := normalizeToken(u.ExperienceLevel); isKnownExperience(lvl) && lvl != p.ExperienceLevel {
		p.ExperienceLevel = lvl
		changed = true
	}

	for _, method := range u.BrewMethods {
		m := normalizeToken(method)
		if m == "" || containsToken(p.BrewMethods, m) {
			continue
		}
		p.BrewMethods = append(p.BrewMethods, m)
		changed = true
	}

	if desc := strings.TrimSpace(u.FlavorDescription); desc != "" && desc != p.FlavorDescription {
		p.FlavorDescription = desc
		changed = true
	}

	if changed {
		p.LastUpdated = now
	}
	return changed
}

func isKnownExperience(level string) bool {
	switch level {
	case ExperienceNovice, ExperienceCasual, ExperienceEnthusiast:
		return true
	}
	return false
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsToken(set []string, token string) bool {
	for _, s := range set {
		if s == token {
			return true
		}
	}
	return false
}

// Session is one user's ongoing conversation, identified by an opaque token.
// The turn list is append-only and insertion order is significant.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

// UserTurnCount returns how many user messages the session holds.
func (s *Session) UserTurnCount() int {
	n := 0
	for _, t := range s.Turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// RecentTurns returns the last n turns in their original order.
func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}
