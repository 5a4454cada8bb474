package shell

import "strings"

// CommentMarker starts a comment when it begins a word.
const CommentMarker = '#'

// StripComment removes a comment from the line. A comment starts at the
// first CommentMarker at the start of the line or following a blank, markers
// inside a word are kept. commentOnly is set if a comment was removed and
// nothing but blanks came before it.
func StripComment(line string) (stripped string, commentOnly bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != CommentMarker {
			continue
		}
		if i == 0 || isBlank(line[i-1]) {
			stripped = line[:i]
			return stripped, strings.TrimLeft(stripped, " \t") == ""
		}
	}

	return line, false
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}
