package shell

import (
	"fmt"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Operator is the chaining operator that precedes a segment.
type Operator int

const (
	// OpNone precedes the first segment of a line.
	OpNone Operator = iota
	// OpAnd runs the segment if the previous status was zero.
	OpAnd
	// OpOr runs the segment if the previous status was non-zero.
	OpOr
	// OpSeq always runs the segment.
	OpSeq
)

func (o Operator) String() string {
	switch o {
	case OpNone:
		return "NONE"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpSeq:
		return ";"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// Allows reports whether a segment behind the operator runs given the status
// of the last segment that ran.
func (o Operator) Allows(status int) bool {
	switch o {
	case OpAnd:
		return status == 0
	case OpOr:
		return status != 0
	default:
		return true
	}
}

// Segment is one operator delimited part of a command line.
type Segment struct {
	Op   Operator
	Text string
}

// SyntaxError is returned for a misplaced operator.
type SyntaxError struct {
	// Token is the operator that was unexpected, empty if the line ended
	// where an operand was required.
	Token string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return "Syntax error: end of file unexpected"
	}
	return fmt.Sprintf("Syntax error: %q unexpected", e.Token)
}

const (
	whitespaceCode = iota + 1
	andCode
	orCode
	seqCode
	operandCode
)

var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	andToken        = parsly.NewToken(andCode, "&&", matcher.NewFragment("&&"))
	orToken         = parsly.NewToken(orCode, "||", matcher.NewFragment("||"))
	seqToken        = parsly.NewToken(seqCode, ";", matcher.NewByte(';'))
	operandToken    = parsly.NewToken(operandCode, "Operand", &operandMatcher{})

	operatorTokens = []*parsly.Token{andToken, orToken, seqToken}
)

// operandMatcher matches everything up to the next chaining operator. A
// single '&' or '|' is ordinary text.
type operandMatcher struct{}

func (m *operandMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		switch input[i] {
		case ';':
			return matched
		case '&', '|':
			if i+1 < cursor.InputSize && input[i+1] == input[i] {
				return matched
			}
		}
		matched++
	}
	return matched
}

func operatorFor(code int) Operator {
	switch code {
	case andCode:
		return OpAnd
	case orCode:
		return OpOr
	case seqCode:
		return OpSeq
	default:
		return OpNone
	}
}

// scanner walks a line returning each non-empty segment in order.
type scanner struct {
	cursor  *parsly.Cursor
	started bool
}

func newScanner(line string) *scanner {
	return &scanner{cursor: parsly.NewCursor("", []byte(line), 0)}
}

func (s *scanner) operand() string {
	cursor := s.cursor
	start := cursor.Pos
	cursor.MatchOne(operandToken)
	return strings.Trim(string(cursor.Input[start:cursor.Pos]), " \t\r\n")
}

// peek returns the next operator without consuming it.
func (s *scanner) peek() (op Operator, eof bool) {
	pos := s.cursor.Pos
	defer func() { s.cursor.Pos = pos }()

	match := s.cursor.MatchAfterOptional(whitespaceToken, operatorTokens...)
	if match.Code == parsly.EOF {
		return OpNone, true
	}
	return operatorFor(match.Code), false
}

// next returns the next non-empty segment, false at the end of the line.
func (s *scanner) next() (Segment, bool, error) {
	for {
		op := OpNone
		first := !s.started
		if !first {
			match := s.cursor.MatchAfterOptional(whitespaceToken, operatorTokens...)
			switch match.Code {
			case parsly.EOF:
				return Segment{}, false, nil
			case andCode, orCode, seqCode:
				op = operatorFor(match.Code)
			default:
				return Segment{}, false, &SyntaxError{Token: string(s.cursor.Input[s.cursor.Pos:])}
			}
		}
		s.started = true

		if text := s.operand(); text != "" {
			return Segment{Op: op, Text: text}, true, nil
		}

		next, eof := s.peek()
		switch {
		case first && eof:
			return Segment{}, false, nil
		case eof:
			return Segment{}, false, &SyntaxError{}
		case op == OpSeq && next == OpSeq:
			// Repeated separators form a single boundary.
			continue
		default:
			return Segment{}, false, &SyntaxError{Token: next.String()}
		}
	}
}

// Chain yields the segments of a line that should run. Gates are evaluated
// one segment at a time so the status produced by running a segment decides
// whether the next one runs.
type Chain struct {
	scanner *scanner
	err     error
}

// NewChain checks the operator placement in the line and returns a chain
// over its segments. A *SyntaxError is returned if an operator is missing an
// operand, in which case nothing in the line should run.
func NewChain(line string) (*Chain, error) {
	check := newScanner(line)
	for {
		_, ok, err := check.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}

	return &Chain{scanner: newScanner(line)}, nil
}

// Next returns the next segment whose gate passes given the status of the
// last segment that ran. Segments whose gate fails are skipped and don't
// change the status. False is returned once the line is exhausted.
func (c *Chain) Next(status int) (Segment, bool) {
	for c.err == nil {
		seg, ok, err := c.scanner.next()
		if err != nil {
			c.err = err
			return Segment{}, false
		}
		if !ok {
			return Segment{}, false
		}
		if seg.Op.Allows(status) {
			return seg, true
		}
	}
	return Segment{}, false
}

// Segments splits the line without evaluating gates.
func Segments(line string) ([]Segment, error) {
	var out []Segment
	s := newScanner(line)
	for {
		seg, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, seg)
	}
}
