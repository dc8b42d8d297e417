package server

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	bodyPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// sanitizeBody strips unsafe markup from user-written post and comment text.
// Text without tags passes through untouched so plain punctuation is not
// entity-escaped.
func sanitizeBody(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return bodyPolicy.Sanitize(s)
}

// sanitizePlain removes every tag, for titles and tags.
func sanitizePlain(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return plainPolicy.Sanitize(s)
}
