// Package shell holds the lexical stages a command line passes through
// before it's dispatched.
//
// A line is processed in a fixed order:
//
// 1. Comments are removed, see StripComment. A line that was only a comment
// is complete and nothing runs.
//
// 2. The line is broken into segments on the chaining operators ";", "&&"
// and "||", see NewChain. The gate in front of each segment is evaluated
// with the status of the segment that ran before it.
//
// 3. Each segment that passes its gate is split into words on blanks, see
// Tokenize. Quotes and escapes have no special meaning.
//
// Alias substitution, parameter expansion and dispatch happen after these
// stages and live in the alias and core packages.
package shell
