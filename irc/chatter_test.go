package irc

import "testing"

func TestNameColor(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want RGBA
	}{
		{"red", "#FF0000", RGBA{255, 0, 0, 255}},
		{"dodger blue", "#1E90FF", RGBA{30, 144, 255, 255}},
		{"empty falls back to white", "", white},
		{"missing hash", "FF0000", white},
		{"short", "#FFF", white},
		{"not hex", "#GGGGGG", white},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Chatter{Tags: &Tags{ColorHex: tt.hex}}
			if got := c.NameColor(); got != tt.want {
				t.Errorf("NameColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDisplayNameFontSafe(t *testing.T) {
	tests := []struct {
		display string
		want    bool
	}{
		{"Some_User123", true},
		{"abc", true},
		{"テスト", false},
		{"Some User", false},
		{"", false},
	}
	for _, tt := range tests {
		c := &Chatter{Tags: &Tags{DisplayName: tt.display}}
		if got := c.IsDisplayNameFontSafe(); got != tt.want {
			t.Errorf("IsDisplayNameFontSafe(%q) = %v, want %v", tt.display, got, tt.want)
		}
	}
}

func TestFallbackNameColorDeterministic(t *testing.T) {
	a := fallbackNameColor("somelogin")
	b := fallbackNameColor("somelogin")
	if a != b {
		t.Errorf("fallbackNameColor not stable: %q vs %q", a, b)
	}
	found := false
	for _, c := range defaultNameColors {
		if c == a {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("fallbackNameColor returned %q, not in palette", a)
	}
}
