package irc

import (
	"sort"
	"strconv"
	"strings"
)

// Badge is a single chat badge attached to a user, e.g. {moderator 1}.
type Badge struct {
	ID      string
	Version string
}

// EmoteIndex is one occurrence of an emote inside the message text.
type EmoteIndex struct {
	Start int
	End   int
}

// Emote is an emote id together with every position it occurs at.
type Emote struct {
	ID      string
	Indexes []EmoteIndex
}

// Tags holds the metadata parsed from the @key=value;... prefix of a
// protocol line. A Tags value is constructed once per parsed line and never
// mutated afterwards.
type Tags struct {
	ColorHex    string
	DisplayName string
	ChannelID   string
	UserID      string
	Badges      []Badge
	Emotes      []Emote
}

// HasBadge reports whether the tags contain a badge with the given id.
func (t *Tags) HasBadge(id string) bool {
	for _, b := range t.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// ContainsEmote reports whether the tags contain an emote with the given id.
func (t *Tags) ContainsEmote(id string) bool {
	for _, e := range t.Emotes {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ParseTags parses a tag segment ("@badges=...;color=...;..." with or
// without the leading '@') into a Tags value. Unknown keys and empty values
// are skipped; entries that fail to parse are dropped rather than failing
// the whole segment.
func ParseTags(tagString string) *Tags {
	tags := &Tags{}
	tagString = strings.TrimPrefix(tagString, "@")

	for _, entry := range strings.Split(tagString, ";") {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || value == "" {
			continue
		}
		switch key {
		case "badges":
			tags.Badges = parseBadges(value)
		case "color":
			tags.ColorHex = value
		case "display-name":
			tags.DisplayName = value
		case "emotes":
			tags.Emotes = parseEmotes(value)
		case "room-id":
			tags.ChannelID = value
		case "user-id":
			tags.UserID = value
		}
	}
	return tags
}

// parseBadges parses a comma-separated list of id/version pairs.
func parseBadges(value string) []Badge {
	split := strings.Split(value, ",")
	badges := make([]Badge, 0, len(split))
	for _, s := range split {
		id, version, ok := strings.Cut(s, "/")
		if !ok || id == "" {
			continue
		}
		badges = append(badges, Badge{ID: id, Version: version})
	}
	return badges
}

// parseEmotes parses a '/'-separated list of "id:start-end,start-end"
// groups. Groups with no valid index ranges are dropped so that every
// returned emote has at least one occurrence.
func parseEmotes(value string) []Emote {
	split := strings.Split(value, "/")
	emotes := make([]Emote, 0, len(split))
	for _, group := range split {
		id, ranges, ok := strings.Cut(group, ":")
		if !ok || id == "" {
			continue
		}
		var indexes []EmoteIndex
		for _, r := range strings.Split(ranges, ",") {
			start, end, ok := strings.Cut(r, "-")
			if !ok {
				continue
			}
			s, err := strconv.Atoi(start)
			if err != nil {
				continue
			}
			e, err := strconv.Atoi(end)
			if err != nil {
				continue
			}
			indexes = append(indexes, EmoteIndex{Start: s, End: e})
		}
		if len(indexes) == 0 {
			continue
		}
		// Ranges are not guaranteed to arrive in text order either, and
		// sortEmotes keys on the first range of each emote.
		sort.Slice(indexes, func(i, j int) bool {
			return indexes[i].Start < indexes[j].Start
		})
		emotes = append(emotes, Emote{ID: id, Indexes: indexes})
	}
	return emotes
}

// sortEmotes orders emotes by the start index of their first occurrence so
// that emote order matches the left-to-right order of the message text.
// Servers are not guaranteed to emit the emotes tag in text order.
func sortEmotes(emotes []Emote) {
	sort.Slice(emotes, func(i, j int) bool {
		return emotes[i].Indexes[0].Start < emotes[j].Indexes[0].Start
	})
}
