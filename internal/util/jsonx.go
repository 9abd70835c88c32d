package util

import (
	"regexp"
	"strings"
)

// Reasoning models wrap answers in thinking tags and markdown fences; the
// patterns below strip both before JSON extraction.
var (
	thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\n?|\n?```$")
	jsonRe  = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)
)

// CleanJSONResponse extracts the outermost JSON value from a raw model
// response. It removes <think> blocks and markdown code fences, then returns
// the first JSON object or array found. When nothing resembling JSON is
// present the cleaned text is returned unchanged so the caller's decode error
// carries the real payload.
func CleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimSpace(thinkRe.ReplaceAllString(content, ""))
	if strings.HasPrefix(content, "```") {
		content = fenceRe.ReplaceAllString(content, "")
	}
	if m := jsonRe.FindString(content); m != "" {
		return m
	}
	return content
}
