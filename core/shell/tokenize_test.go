package shell

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleTokenize() {
	fmt.Printf("%q\n", Tokenize("ls   -l\t/tmp\n"))
	fmt.Printf("%q\n", Tokenize(`echo "hello world"`))

	// Output: ["ls" "-l" "/tmp"]
	// ["echo" "\"hello" "world\""]
}

func TestTokenize(t *testing.T) {
	cases := map[string]struct {
		segment  string
		expected []string
	}{
		"empty":         {"", nil},
		"blanks":        {" \t \n", nil},
		"single":        {"ls", []string{"ls"}},
		"leading-space": {"   pwd", []string{"pwd"}},
		"crlf":          {"ls -a\r\n", []string{"ls", "-a"}},
		"single-amp":    {"a & b", []string{"a", "&", "b"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.segment))
		})
	}
}
