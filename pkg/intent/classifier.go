package intent

import (
	"strings"

	"golang.org/x/text/cases"
)

// urduThreshold is the number of distinct markers that flips detection to Urdu.
const urduThreshold = 2

// Classification is the result of classifying one utterance.
type Classification struct {
	Language     Language `json:"language"`
	Intent       Intent   `json:"intent"`
	RulesVersion string   `json:"rules_version"`
}

// Classifier maps utterances to a language and an intent. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	rules *RuleSet
}

// NewClassifier returns a Classifier over rs, or over the embedded rules when rs is nil.
func NewClassifier(rs *RuleSet) *Classifier {
	if rs == nil {
		rs = DefaultRules()
	}
	return &Classifier{rules: rs}
}

// Rules returns the rule set in use.
func (c *Classifier) Rules() *RuleSet {
	return c.rules
}

// Normalize case-folds text and collapses runs of whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(cases.Fold().String(text)), " ")
}

// Classify returns the language and intent for text. A valid hint ("en" or
// "ur") overrides language detection. Unmatched text is a conversation.
func (c *Classifier) Classify(text, hint string) Classification {
	norm := Normalize(text)

	lang, ok := ParseLanguage(hint)
	if !ok {
		lang = c.DetectLanguage(norm)
	}

	out := Classification{Language: lang, Intent: Conversation, RulesVersion: c.rules.Version()}
	for _, r := range c.rules.rules {
		if r.Match(norm) {
			out.Intent = r.Intent
			break
		}
	}
	return out
}

// DetectLanguage returns Urdu when the text contains at least two distinct
// romanized-Urdu markers as whole words, English otherwise.
func (c *Classifier) DetectLanguage(text string) Language {
	seen := make(map[string]bool)
	for _, w := range strings.FieldsFunc(Normalize(text), isSeparator) {
		if c.rules.urduMarkers[w] {
			seen[w] = true
			if len(seen) >= urduThreshold {
				return Urdu
			}
		}
	}
	return English
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
		return false
	case r > 127:
		return false
	default:
		return true
	}
}
