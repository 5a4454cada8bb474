package shell

import "strings"

// Tokenize splits a segment into words on runs of spaces and tabs. A trailing
// newline is dropped. Quotes are not interpreted, so a quoted argument
// containing whitespace is split where the whitespace occurs.
//
// Nil is returned if the segment has no words.
func Tokenize(segment string) []string {
	words := strings.FieldsFunc(segment, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(words) == 0 {
		return nil
	}
	return words
}
