package service

import (
	"strings"
	"unicode"
)

// Similarity returns a symmetric ratio in [0,1] describing how close two
// agent utterances are. Both sides are canonicalized first (lowercasing,
// punctuation stripping, folding of the verb variants agents rotate through
// when stalling) so that "I'll verify with the team" and "Let me check with
// the team" score as the near-duplicates they are in practice.
func Similarity(a, b string) float64 {
	ca := Canonicalize(a)
	cb := Canonicalize(b)
	if ca == "" && cb == "" {
		return 1
	}
	if ca == "" || cb == "" {
		return 0
	}
	return ratcliffObershelp(ca, cb)
}

// phraseFolds are applied before tokenization; they rewrite multi-word
// openers to one canonical form.
var phraseFolds = [...][2]string{
	{"i'll ", "let me "},
	{"i will ", "let me "},
	{"i am going to ", "let me "},
	{"gonna ", "going to "},
}

// tokenFolds collapse the verbs agents cycle through when promising to get
// back to someone.
var tokenFolds = map[string]string{
	"verify":     "check",
	"verifying":  "check",
	"confirm":    "check",
	"confirming": "check",
	"checking":   "check",
	"validar":    "check",
	"confirmar":  "check",
	"verificar":  "check",
}

// fillerTokens carry no meaning for loop detection.
var fillerTokens = map[string]struct{}{
	"here": {}, "just": {}, "really": {}, "ok": {}, "so": {},
	"aqui": {}, "entao": {}, "então": {},
}

// Canonicalize lowercases, trims, strips punctuation and folds paraphrase
// variants into one surface form. Exported because the compliance validator
// reuses it for marker checks.
func Canonicalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	for _, fold := range phraseFolds {
		s = strings.ReplaceAll(s, fold[0], fold[1])
	}

	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	tokens := strings.Fields(sb.String())
	out := tokens[:0]
	for _, tok := range tokens {
		if _, skip := fillerTokens[tok]; skip {
			continue
		}
		if folded, ok := tokenFolds[tok]; ok {
			tok = folded
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// ratcliffObershelp computes the classic pattern-matching ratio: twice the
// number of matching characters over the total length, where matches are
// found by recursing around the longest common substring. Symmetric because
// the longest common substring is.
func ratcliffObershelp(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(a, b)) / float64(total)
}

func matchingChars(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:ai], b[:bi]) +
		matchingChars(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b string) (ai, bi, size int) {
	// Single-row DP over byte positions; canonicalized input is ASCII-ish
	// enough that byte matching is fine, and any multi-byte rune still
	// matches itself byte for byte.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}
