package quickreply

import "strings"

// Category selects which quick-reply menu the client should present after a
// completed assistant turn. CategoryNone means free-text input only.
type Category string

const (
	CategoryExperience Category = "experience"
	CategoryBrewMethod Category = "brew_method"
	CategoryFlavor     Category = "flavor"
	CategoryNone       Category = "none"
)

// Keyword sets are checked in a fixed precedence order (experience before
// brew_method before flavor) so text matching several sets resolves
// deterministically to the first.
var experienceKeywords = []string{
	"brewing experience",
	"experience level",
	"getting started",
	"casual drinker",
	"rabbit hole",
	"new to coffee",
	"how experienced",
}

var brewMethodKeywords = []string{
	"brew method",
	"brewing method",
	"how do you brew",
	"how do you make",
	"espresso machine",
	"pour over",
	"french press",
	"aeropress",
	"moka pot",
	"what equipment",
	"brew your coffee",
}

var flavorKeywords = []string{
	"flavor",
	"flavour",
	"taste",
	"tasting notes",
	"fruity or chocolatey",
	"what do you like",
}

// Classify inspects a fully completed assistant turn and returns the
// quick-reply category to present next. Pure and deterministic; partial
// chunks must not be classified.
func Classify(text string) Category {
	lowered := strings.ToLower(text)

	if matchesAny(lowered, experienceKeywords) {
		return CategoryExperience
	}
	if matchesAny(lowered, brewMethodKeywords) {
		return CategoryBrewMethod
	}
	if matchesAny(lowered, flavorKeywords) {
		return CategoryFlavor
	}
	return CategoryNone
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
