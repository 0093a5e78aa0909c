package markup

import (
	"regexp"
	"strings"

	"markup-translator/internal/tag"
)

var (
	maskedTagPattern    = regexp.MustCompile(`\S?([\x{E101}\x{E102}\x{E103}].)\S?`)
	openingSpacePattern = regexp.MustCompile(`(\x{E101}.)( )+`)
	closingSpacePattern = regexp.MustCompile(`( )+(\x{E102}.)`)
	isoSpacePattern     = regexp.MustCompile(`(\x{E103}.)( )+`)
)

// MaskTags embeds each tag token with the last character of the preceding
// and the first character of the following non-tag token. This glues the
// tags to their surrounding tokens so that a detokenizer treats them as
// part of the text.
func MaskTags(tokensWithTags []string) string {
	var sb strings.Builder

	for i, currentToken := range tokensWithTags {
		if tag.IsTag(currentToken) {
			for j := i - 1; j >= 0; j-- {
				precedingToken := tokensWithTags[j]
				if !tag.IsTag(precedingToken) {
					runes := []rune(precedingToken)
					currentToken = currentToken + string(runes[len(runes)-1])
					break
				}
			}
			for j := i + 1; j < len(tokensWithTags); j++ {
				followingToken := tokensWithTags[j]
				if !tag.IsTag(followingToken) {
					runes := []rune(followingToken)
					currentToken = string(runes[0]) + currentToken
					break
				}
			}
		}
		sb.WriteString(currentToken)
		sb.WriteString(" ")
	}
	return strings.TrimSpace(sb.String())
}

// UnmaskTags undoes the tag masking of MaskTags, stripping the embedded
// characters around each tag.
func UnmaskTags(sentence string) string {
	return maskedTagPattern.ReplaceAllString(sentence, "$1")
}

// DetokenizeTags removes the spaces around tags. Opening and isolated tags
// lose the spaces to their right, closing tags the spaces to their left.
func DetokenizeTags(sentence string) string {
	sentence = openingSpacePattern.ReplaceAllString(sentence, "$1")
	sentence = closingSpacePattern.ReplaceAllString(sentence, "$2")
	return isoSpacePattern.ReplaceAllString(sentence, "$1")
}
