package profile

import (
	"net/http"
	"strings"
)

// RequesterClassifier decides whether a request comes from an automated
// agent (crawler, link unfurler) or a human browser. The resolver depends
// only on this capability so the detection strategy can be swapped without
// touching rendering.
type RequesterClassifier interface {
	IsAutomatedAgent(r *http.Request) bool
}

// UserAgentClassifier classifies requests by sniffing the User-Agent header
// against a list of known crawler substrings.
type UserAgentClassifier struct {
	patterns []string
}

// NewUserAgentClassifier creates a classifier with the default crawler list
func NewUserAgentClassifier() *UserAgentClassifier {
	return &UserAgentClassifier{
		patterns: []string{
			"bot",
			"crawler",
			"spider",
			"facebookexternalhit",
			"twitterbot",
			"slackbot",
			"telegrambot",
			"whatsapp",
			"linkedinbot",
			"discordbot",
			"pinterest",
			"embedly",
			"quora link preview",
			"vkshare",
			"skypeuripreview",
		},
	}
}

// IsAutomatedAgent reports whether the request's User-Agent matches a known
// crawler pattern
func (uc *UserAgentClassifier) IsAutomatedAgent(r *http.Request) bool {
	userAgent := strings.ToLower(r.UserAgent())
	if userAgent == "" {
		return false
	}
	for _, pattern := range uc.patterns {
		if strings.Contains(userAgent, pattern) {
			return true
		}
	}
	return false
}
