package quickreply

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Category
	}{
		{
			name: "experience question",
			text: "Before I suggest anything, how much brewing experience do you have?",
			want: CategoryExperience,
		},
		{
			name: "brew method question",
			text: "Got it! What brew method do you usually use at home?",
			want: CategoryBrewMethod,
		},
		{
			name: "flavor question",
			text: "Do you lean fruity or chocolatey in taste?",
			want: CategoryFlavor,
		},
		{
			name: "plain recommendation",
			text: "Try the Gayo Wine Process from Sagara, it fits your setup well.",
			want: CategoryNone,
		},
		{
			name: "experience wins over brew method keywords",
			text: "What's your brewing experience with a french press?",
			want: CategoryExperience,
		},
		{
			name: "brew method wins over flavor keywords",
			text: "How do you brew your coffee, and what flavor do you chase?",
			want: CategoryBrewMethod,
		},
		{
			name: "case insensitive",
			text: "WHAT EQUIPMENT do you own?",
			want: CategoryBrewMethod,
		},
		{
			name: "empty text",
			text: "",
			want: CategoryNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "Tell me about your brewing experience and your brew method."
	first := Classify(text)
	for i := 0; i < 10; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("Classify is not deterministic: got %q then %q", first, got)
		}
	}
}
