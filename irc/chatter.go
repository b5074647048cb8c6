package irc

import (
	"hash/fnv"
	"regexp"
	"strconv"
)

// Chatter is a single chat message together with the sender's parsed tags.
// Immutable once constructed.
type Chatter struct {
	Login   string
	Channel string
	Message string
	Tags    *Tags
}

// RGBA is a name color decoded from a "#RRGGBB" hex string.
type RGBA struct {
	R, G, B, A uint8
}

var white = RGBA{255, 255, 255, 255}

// nameSafePattern matches names that render in most fonts: a-z, A-Z, 0-9, _.
var nameSafePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// defaultNameColors is the palette native Twitch chat assigns to users who
// have not picked a name color.
var defaultNameColors = []string{
	"#FF0000", "#0000FF", "#00FF00", "#B22222", "#FF7F50",
	"#9ACD32", "#FF4500", "#2E8B57", "#DAA520", "#D2691E",
	"#5F9EA0", "#1E90FF", "#FF69B4", "#8A2BE2", "#00FF7F",
}

// NameColor returns the RGBA color of the chatter's name. White is returned
// when the color tag is empty or unparseable.
func (c *Chatter) NameColor() RGBA {
	color, ok := parseHexColor(c.Tags.ColorHex)
	if !ok {
		return white
	}
	return color
}

// IsDisplayNameFontSafe reports whether the display name only contains
// characters a-z, A-Z, 0-9 and _. Display names may carry localized
// characters most fonts cannot render; callers can fall back to the login
// name (which is always font-safe) when this returns false.
func (c *Chatter) IsDisplayNameFontSafe() bool {
	return nameSafePattern.MatchString(c.Tags.DisplayName)
}

// HasBadge reports whether the chatter has a badge with the given id.
func (c *Chatter) HasBadge(id string) bool { return c.Tags.HasBadge(id) }

// ContainsEmote reports whether the message contains an emote with the
// given id.
func (c *Chatter) ContainsEmote(id string) bool { return c.Tags.ContainsEmote(id) }

// parseHexColor decodes a "#RRGGBB" string into an opaque RGBA value.
func parseHexColor(hex string) (RGBA, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return RGBA{}, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return RGBA{}, false
	}
	return RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// fallbackNameColor picks a deterministic color from the native Twitch
// palette for users who have not set one. Keyed on the login name so that a
// user keeps the same color across messages and sessions.
func fallbackNameColor(login string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(login))
	return defaultNameColors[h.Sum32()%uint32(len(defaultNameColors))]
}
