package search

import (
	"strings"
	"unicode"
)

type Token string

type Tokenizer struct {
	MaxTokens int
}

var commonIssues = map[rune]rune{
	'ö': 'o',
	'ä': 'a',
	'å': 'a',
	'é': 'e',
	'è': 'e',
	'ê': 'e',
	'ë': 'e',
	'ï': 'i',
	'î': 'i',
	'ô': 'o',
	'ü': 'u',
	'û': 'u',
	'ÿ': 'y',
	'ç': 'c',
	'ñ': 'n',
	'ß': 's',
	'æ': 'a',
	'ø': 'o',
	'Ø': 'o',
}

func NormalizeWord(text string) Token {
	ret := make([]rune, 0, len(text))
	var l rune
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			l = unicode.ToLower(r)
			if replacement, ok := commonIssues[l]; ok {
				l = replacement
			}
			ret = append(ret, l)
		}
	}
	return Token(ret)
}

func isSeparator(chr rune) bool {
	return unicode.IsSpace(chr) || strings.ContainsRune(",:.!?;()[]{}\"'/-", chr)
}

func SplitWords(text string, onWord func(word string, count int, last bool) bool) {
	words := strings.FieldsFunc(text, isSeparator)
	for count, word := range words {
		if !onWord(word, count, count == len(words)-1) {
			return
		}
	}
}

// Tokenize calls onToken once per unique normalized word, stopping after
// MaxTokens words or when onToken returns false.
func (t *Tokenizer) Tokenize(text string, onToken func(token Token, original string, count int, last bool) bool) {
	tokenNumber := 0
	found := map[Token]struct{}{}
	SplitWords(text, func(word string, count int, last bool) bool {
		normalized := NormalizeWord(word)
		if len(normalized) == 0 {
			return true
		}
		if _, seen := found[normalized]; seen {
			return true
		}
		found[normalized] = struct{}{}
		if !onToken(normalized, word, tokenNumber, last) {
			return false
		}
		tokenNumber++
		return t.MaxTokens <= 0 || tokenNumber < t.MaxTokens
	})
}

func (t *Tokenizer) Tokens(text string) []Token {
	ret := make([]Token, 0)
	t.Tokenize(text, func(token Token, _ string, _ int, _ bool) bool {
		ret = append(ret, token)
		return true
	})
	return ret
}
