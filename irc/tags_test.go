package irc

import (
	"reflect"
	"testing"
)

func TestParseTags(t *testing.T) {
	tagString := "@badges=subscriber/12,premium/1;color=#8A2BE2;display-name=SomeUser;room-id=123;user-id=456;unknown-key=zzz"
	tags := ParseTags(tagString)

	wantBadges := []Badge{{ID: "subscriber", Version: "12"}, {ID: "premium", Version: "1"}}
	if !reflect.DeepEqual(tags.Badges, wantBadges) {
		t.Errorf("Badges = %v, want %v", tags.Badges, wantBadges)
	}
	if tags.ColorHex != "#8A2BE2" {
		t.Errorf("ColorHex = %q, want %q", tags.ColorHex, "#8A2BE2")
	}
	if tags.DisplayName != "SomeUser" {
		t.Errorf("DisplayName = %q, want %q", tags.DisplayName, "SomeUser")
	}
	if tags.ChannelID != "123" {
		t.Errorf("ChannelID = %q, want %q", tags.ChannelID, "123")
	}
	if tags.UserID != "456" {
		t.Errorf("UserID = %q, want %q", tags.UserID, "456")
	}
}

func TestParseTagsEmptyValuesSkipped(t *testing.T) {
	tags := ParseTags("@badges=;color=;display-name=Foo;emotes=")
	if len(tags.Badges) != 0 {
		t.Errorf("Badges = %v, want none", tags.Badges)
	}
	if tags.ColorHex != "" {
		t.Errorf("ColorHex = %q, want empty", tags.ColorHex)
	}
	if tags.DisplayName != "Foo" {
		t.Errorf("DisplayName = %q, want %q", tags.DisplayName, "Foo")
	}
}

func TestParseTagsWithoutAtPrefix(t *testing.T) {
	tags := ParseTags("display-name=Bar")
	if tags.DisplayName != "Bar" {
		t.Errorf("DisplayName = %q, want %q", tags.DisplayName, "Bar")
	}
}

func TestParseEmotes(t *testing.T) {
	tags := ParseTags("@emotes=25:0-4,12-16/1902:6-10")
	if len(tags.Emotes) != 2 {
		t.Fatalf("len(Emotes) = %d, want 2", len(tags.Emotes))
	}
	kappa := tags.Emotes[0]
	if kappa.ID != "25" {
		t.Errorf("ID = %q, want %q", kappa.ID, "25")
	}
	want := []EmoteIndex{{Start: 0, End: 4}, {Start: 12, End: 16}}
	if !reflect.DeepEqual(kappa.Indexes, want) {
		t.Errorf("Indexes = %v, want %v", kappa.Indexes, want)
	}
	if !tags.ContainsEmote("1902") {
		t.Errorf("expected emote 1902")
	}
}

func TestParseEmotesSortsRanges(t *testing.T) {
	// Ranges within a group can arrive out of text order; parsing must
	// normalize them so the first range is the earliest occurrence.
	tags := ParseTags("@emotes=25:14-18,0-4")
	if len(tags.Emotes) != 1 {
		t.Fatalf("len(Emotes) = %d, want 1", len(tags.Emotes))
	}
	want := []EmoteIndex{{Start: 0, End: 4}, {Start: 14, End: 18}}
	if !reflect.DeepEqual(tags.Emotes[0].Indexes, want) {
		t.Errorf("Indexes = %v, want %v", tags.Emotes[0].Indexes, want)
	}
}

func TestParseEmotesDropsInvalidGroups(t *testing.T) {
	// A group with no parseable range cannot satisfy the invariant that
	// every emote has at least one occurrence, so it is dropped whole.
	tags := ParseTags("@emotes=25:bogus/1902:6-10,x-y")
	if len(tags.Emotes) != 1 {
		t.Fatalf("len(Emotes) = %d, want 1", len(tags.Emotes))
	}
	if tags.Emotes[0].ID != "1902" {
		t.Errorf("ID = %q, want %q", tags.Emotes[0].ID, "1902")
	}
	if len(tags.Emotes[0].Indexes) != 1 {
		t.Errorf("len(Indexes) = %d, want 1", len(tags.Emotes[0].Indexes))
	}
}

func TestHasBadge(t *testing.T) {
	tags := ParseTags("@badges=moderator/1")
	if !tags.HasBadge("moderator") {
		t.Errorf("expected moderator badge")
	}
	if tags.HasBadge("broadcaster") {
		t.Errorf("unexpected broadcaster badge")
	}
}

func TestSortEmotes(t *testing.T) {
	emotes := []Emote{
		{ID: "c", Indexes: []EmoteIndex{{Start: 20, End: 24}}},
		{ID: "a", Indexes: []EmoteIndex{{Start: 0, End: 4}}},
		{ID: "b", Indexes: []EmoteIndex{{Start: 6, End: 10}}},
	}
	sortEmotes(emotes)
	for i, want := range []string{"a", "b", "c"} {
		if emotes[i].ID != want {
			t.Errorf("emotes[%d].ID = %q, want %q", i, emotes[i].ID, want)
		}
	}
}
