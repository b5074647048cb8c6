package irc

import (
	"errors"
	"fmt"
	"strings"
)

// lineKind classifies the command carried by a protocol line.
type lineKind int

const (
	lineUnrecognized lineKind = iota
	linePrivMsg
	lineUserState
	lineNotice
	lineReply
)

// parsedLine is the result of parsing one raw protocol line. The ping/pong
// flags are independent of the command classification: a PING is answered
// even when the rest of the line is unrecognized or malformed.
type parsedLine struct {
	kind    lineKind
	chatter *Chatter // linePrivMsg
	channel string   // lineUserState
	tags    *Tags    // lineUserState
	text    string   // lineNotice: the message segment
	code    string   // lineReply: "001", "353"
	ping    bool
	pong    bool
}

var errMalformedLine = errors.New("malformed protocol line")

// parseLine parses one raw protocol line (CRLF already stripped, never
// empty). The returned parsedLine always carries valid ping/pong flags; a
// non-nil error means the command portion failed an expected-character
// assumption and should be dropped.
func parseLine(raw string) (parsedLine, error) {
	var out parsedLine
	out.ping = strings.HasPrefix(raw, "PING")
	out.pong = strings.HasPrefix(raw, ":tmi.twitch.tv PONG")

	// Split off the tag segment, if present.
	tagString := ""
	ircString := raw
	if raw[0] == '@' {
		ind := strings.IndexByte(raw, ' ')
		if ind < 0 {
			return out, fmt.Errorf("%w: tag segment without message segment", errMalformedLine)
		}
		tagString = raw[:ind]
		ircString = strings.TrimLeft(raw[ind:], " ")
	}

	if ircString == "" || ircString[0] != ':' {
		return out, nil
	}

	// The command verb is the second space-delimited token.
	ind := strings.IndexByte(ircString, ' ')
	if ind < 0 {
		return out, nil
	}
	rest := strings.TrimLeft(ircString[ind:], " ")
	if ind = strings.IndexByte(rest, ' '); ind < 0 {
		return out, nil
	}

	switch verb := rest[:ind]; verb {
	case "PRIVMSG":
		chatter, err := parsePrivMsg(ircString, tagString)
		if err != nil {
			return out, err
		}
		out.kind = linePrivMsg
		out.chatter = chatter
	case "USERSTATE":
		channel, err := parseChannel(ircString)
		if err != nil {
			return out, err
		}
		out.kind = lineUserState
		out.channel = channel
		out.tags = ParseTags(tagString)
	case "NOTICE":
		out.kind = lineNotice
		out.text = ircString
	case "001", "353":
		out.kind = lineReply
		out.code = verb
	}
	return out, nil
}

// parsePrivMsg extracts login, channel and message body from a PRIVMSG line
// and attaches the parsed tags with emotes sorted into text order.
func parsePrivMsg(ircString, tagString string) (*Chatter, error) {
	login, err := parseLoginName(ircString)
	if err != nil {
		return nil, err
	}
	channel, err := parseChannel(ircString)
	if err != nil {
		return nil, err
	}
	message, err := parseMessage(ircString)
	if err != nil {
		return nil, err
	}
	tags := ParseTags(tagString)
	sortEmotes(tags.Emotes)
	return &Chatter{Login: login, Channel: channel, Message: message, Tags: tags}, nil
}

// parseLoginName extracts the substring between the leading ':' and the
// following '!'.
func parseLoginName(ircString string) (string, error) {
	ind := strings.IndexByte(ircString, '!')
	if ind < 1 {
		return "", fmt.Errorf("%w: no login name delimiter", errMalformedLine)
	}
	return ircString[1:ind], nil
}

// parseChannel extracts the substring after the first '#' up to the next
// space or end of string.
func parseChannel(ircString string) (string, error) {
	ind := strings.IndexByte(ircString, '#')
	if ind < 0 {
		return "", fmt.Errorf("%w: no channel delimiter", errMalformedLine)
	}
	channel := ircString[ind+1:]
	if sp := strings.IndexByte(channel, ' '); sp >= 0 {
		channel = channel[:sp]
	}
	return channel, nil
}

// parseMessage extracts everything after "PRIVMSG #channel :". Only the
// first two spaces after the command verb are delimiters; the body may
// contain further ':' characters.
func parseMessage(ircString string) (string, error) {
	ind := indexOfNthByte(ircString, ' ', 3)
	if ind < 0 || ind+2 > len(ircString) {
		return "", fmt.Errorf("%w: no message body", errMalformedLine)
	}
	return ircString[ind+2:], nil
}

// indexOfNthByte returns the index of the nth (1-based) occurrence of c in
// s, or -1.
func indexOfNthByte(s string, c byte, n int) int {
	off := 0
	for i := 0; i < n; i++ {
		ind := strings.IndexByte(s[off:], c)
		if ind < 0 {
			return -1
		}
		off += ind + 1
	}
	return off - 1
}
