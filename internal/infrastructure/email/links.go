package email

import (
	"net/url"
	"strings"
)

// Links builds the absolute URLs embedded in verification and reset emails
// from the service's public base URL.
type Links struct {
	base string
}

func NewLinks(baseURL string) *Links {
	return &Links{base: strings.TrimRight(baseURL, "/")}
}

func (l *Links) VerifyURL(username, token string) string {
	return l.build("/auth/verify", username, token)
}

func (l *Links) ResetURL(username, token string) string {
	return l.build("/auth/reset/confirm", username, token)
}

func (l *Links) build(path, username, token string) string {
	q := url.Values{}
	q.Set("username", username)
	q.Set("key", token)
	return l.base + path + "?" + q.Encode()
}
