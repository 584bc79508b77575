// Package moderation decides whether candidate messages are offensive.
// The Filter is the fast deterministic layer; the Engine composes it with
// the slower remote classifier.
package moderation

import (
	"log/slog"
	"strings"
	"unicode"

	"chat-guard/errors"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Filter matches single offensive words against a dictionary and offensive
// multi-word phrases as substrings. Pure and synchronous: no I/O besides
// diagnostic logging.
type Filter struct {
	words   map[string]struct{}
	matcher *goahocorasick.Machine
	log     *slog.Logger
}

// NewFilter builds the filter from the built-in dictionary and phrase list,
// extended with extraWords. Patterns are normalized once at construction so
// every Check works on the same searchable representation.
func NewFilter(extraWords []string, log *slog.Logger) (Filter, error) {
	words := make(map[string]struct{}, len(defaultWords)+len(extraWords))
	for _, w := range append(append([]string{}, defaultWords...), extraWords...) {
		norm := string(normalizeRunes([]rune(w)))
		if norm == "" {
			continue
		}
		words[norm] = struct{}{}
	}
	if len(words) == 0 {
		return Filter{}, errors.ErrEmptyWords
	}

	patterns := make([][]rune, 0, len(defaultPhrases))
	for _, phrase := range defaultPhrases {
		norm := normalizeRunes([]rune(phrase))
		if len(norm) == 0 {
			continue
		}
		patterns = append(patterns, norm)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Filter{}, err
	}
	return Filter{words: words, matcher: m, log: log}, nil
}

// Check reports whether text contains a dictionary word or a listed phrase.
// Empty and whitespace-only input is never offensive.
func (f *Filter) Check(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	for _, token := range tokenize(text) {
		if _, hit := f.words[token]; hit {
			f.log.Debug("blocked by dictionary", "word", token)
			return true
		}
	}

	// Phrase search runs on the noise-stripped text, so spacing and
	// punctuation tricks do not hide a listed phrase.
	norm := normalizeRunes([]rune(text))
	if len(norm) == 0 {
		return false
	}
	if spans := f.matcher.MultiPatternSearch(norm, true); len(spans) > 0 {
		f.log.Debug("blocked by phrase", "phrase", string(spans[0].Word))
		return true
	}
	return false
}

// tokenize splits text on anything that is not a letter or digit and
// normalizes each token.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if norm := string(normalizeRunes([]rune(field))); norm != "" {
			tokens = append(tokens, norm)
		}
	}
	return tokens
}

// normalizeRunes applies simplification and noise removal to a slice of runes.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common Leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters that should be ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
