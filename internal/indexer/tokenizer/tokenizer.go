// Package tokenizer turns text into the normalised words the tracker indexes.
// Every character other than an ASCII letter or digit separates words, and
// words are lower-cased. Nothing is stemmed or dropped.
package tokenizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Token is a single normalised word with its 1-based line number.
type Token struct {
	Term string
	Line int
}

// Tokenize splits one line of text into lower-cased words.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(text, isSeparator)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// ReadTokens reads r line by line and returns every token in reading order.
// Lines may be any length; "\n" and "\r\n" both end a line.
func ReadTokens(r io.Reader) ([]Token, error) {
	br := bufio.NewReader(r)
	tokens := make([]Token, 0, 256)
	line := 0
	for {
		text, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading line %d: %w", line+1, err)
		}
		if text == "" && err != nil {
			break
		}
		line++
		text = strings.TrimRight(text, "\r\n")
		for _, term := range Tokenize(text) {
			tokens = append(tokens, Token{Term: term, Line: line})
		}
		if err != nil {
			break
		}
	}
	return tokens, nil
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return false
	case r >= '0' && r <= '9':
		return false
	default:
		return true
	}
}
