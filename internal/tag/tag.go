// Package tag implements the inline markup token model used across the
// translation pipeline. A tag is encoded as a two-character token: a kind
// marker from the Unicode private use area followed by an id character.
// Tags survive tokenization as ordinary whitespace-separated tokens and are
// reinserted into the translation afterwards.
package tag

import (
	"fmt"
	"strings"
)

const (
	// MarkerOpening marks an opening tag token
	MarkerOpening = '\uE101'
	// MarkerClosing marks a closing tag token
	MarkerClosing = '\uE102'
	// MarkerIsolated marks an isolated tag token
	MarkerIsolated = '\uE103'
	// CharBase is the offset added to a tag id to form the id character
	CharBase = 0xE110
)

// Opening returns an opening tag with the given tag id
func Opening(id int) string {
	return string([]rune{MarkerOpening, rune(id + CharBase)})
}

// Closing returns a closing tag with the given tag id
func Closing(id int) string {
	return string([]rune{MarkerClosing, rune(id + CharBase)})
}

// Isolated returns an isolated tag with the given tag id
func Isolated(id int) string {
	return string([]rune{MarkerIsolated, rune(id + CharBase)})
}

func firstRune(token string) rune {
	for _, r := range token {
		return r
	}
	return 0
}

// IsTag checks if the given token is a tag
func IsTag(token string) bool {
	r := firstRune(token)
	return r == MarkerOpening || r == MarkerClosing || r == MarkerIsolated
}

// IsOpening checks if the given token is an opening tag
func IsOpening(token string) bool {
	return firstRune(token) == MarkerOpening
}

// IsClosing checks if the given token is a closing tag
func IsClosing(token string) bool {
	return firstRune(token) == MarkerClosing
}

// IsIsolated checks if the given token is an isolated tag
func IsIsolated(token string) bool {
	return firstRune(token) == MarkerIsolated
}

// IsBackward checks if the given token is a tag that binds backward,
// i.e. towards the preceding token
func IsBackward(token string) bool {
	return IsClosing(token)
}

// IsForward checks if the given token is a tag that binds forward,
// i.e. towards the following token
func IsForward(token string) bool {
	return IsOpening(token) || IsIsolated(token)
}

// ID returns the id of the given tag, or -1 if the token is not a tag
func ID(tag string) int {
	if !IsTag(tag) {
		return -1
	}
	runes := []rune(tag)
	if len(runes) < 2 {
		return -1
	}
	return int(runes[1]) - CharBase
}

// StripTokens removes all tags from the given tokens
func StripTokens(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !IsTag(token) {
			result = append(result, token)
		}
	}
	return result
}

// StripText removes all tags from the given coded text with whitespace
// separated tokens
func StripText(codedText string) string {
	var sb strings.Builder
	runes := []rune(codedText)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case MarkerOpening, MarkerClosing, MarkerIsolated:
			// skip the id character and the following space
			i = i + 2
		default:
			sb.WriteRune(runes[i])
		}
	}
	return strings.TrimSpace(sb.String())
}

// Format replaces tags with human readable tags in the given tokens and
// joins them to a string. Closing tags use the id of the associated opening
// tag so that the result is well-formed.
func Format(tokens []string, tagMap *Map) string {
	result := make([]string, len(tokens))
	for i, token := range tokens {
		switch {
		case IsIsolated(token):
			result[i] = fmt.Sprintf("<iso%d/>", ID(token))
		case IsOpening(token):
			result[i] = fmt.Sprintf("<u%d>", ID(token))
		case IsClosing(token):
			id := ID(token)
			if tagMap != nil {
				if opening, ok := tagMap.OpeningOf(token); ok {
					id = ID(opening)
				}
			}
			result[i] = fmt.Sprintf("</u%d>", id)
		default:
			result[i] = token
		}
	}
	return strings.Join(result, " ")
}
