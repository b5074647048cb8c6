package irc

import (
	"fmt"
	"math/rand"
	"strings"
)

// Credentials are the login details for a Twitch IRC session. With Anonymous
// set, Username and OAuthToken are ignored: a generated justinfan login is
// used instead and sending chat messages is disallowed.
type Credentials struct {
	Username   string
	OAuthToken string
	Channel    string
	Anonymous  bool
}

// normalized returns a copy with whitespace trimmed, the optional "oauth:"
// token prefix stripped, and username/channel lowercased the way the server
// expects them. Anonymous credentials get a generated login and no token.
func (c Credentials) normalized() Credentials {
	out := Credentials{
		Username:   strings.ToLower(strings.TrimSpace(c.Username)),
		OAuthToken: strings.TrimSpace(c.OAuthToken),
		Channel:    strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Channel), "#")),
		Anonymous:  c.Anonymous,
	}
	out.OAuthToken = strings.TrimPrefix(out.OAuthToken, "oauth:")
	if out.Anonymous {
		out.Username = anonymousUsername()
		out.OAuthToken = ""
	}
	return out
}

// validate reports a configuration fault for empty fields. Called after
// normalization, so anonymous credentials always pass the username/token
// checks.
func (c Credentials) validate() error {
	if !c.Anonymous && (c.Username == "" || c.OAuthToken == "") {
		return fmt.Errorf("missing username or oauth token")
	}
	if c.Channel == "" {
		return fmt.Errorf("missing channel")
	}
	return nil
}

// anonymousUsername generates a justinfan login, the conventional read-only
// Twitch IRC identity.
func anonymousUsername() string {
	return fmt.Sprintf("justinfan%d", 1000+rand.Intn(9000))
}
