package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Heart Health, Explained!", "heart-health-explained"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-slugged-value", "already-slugged-value"},
		{"Multiple   spaces", "multiple-spaces"},
		{"Symbols & (parens) #tags", "symbols-parens-tags"},
		{"ALL CAPS TITLE", "all-caps-title"},
		{"hyphen--collapse---test", "hyphen-collapse-test"},
		{"", ""},
		{"!!!", ""},
		{"10 Tips for 2026", "10-tips-for-2026"},
	}

	for _, tt := range tests {
		if got := Generate(tt.in); got != tt.want {
			t.Errorf("Generate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mental-health", "Mental Health"},
		{"nutrition", "Nutrition"},
		{"covid-19", "Covid 19"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Titleize(tt.in); got != tt.want {
			t.Errorf("Titleize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateTitleizeRoundTrip(t *testing.T) {
	// A titleized slug must slug back to itself.
	for _, s := range []string{"mental-health", "heart-disease", "sleep"} {
		if got := Generate(Titleize(s)); got != s {
			t.Errorf("Generate(Titleize(%q)) = %q", s, got)
		}
	}
}
