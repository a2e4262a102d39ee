package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Command
		ok   bool
	}{
		{"reload", Command{Verb: VerbReload}, true},
		{"Mine", Command{Verb: VerbScope, Arg: "mine"}, true},
		{"scope role", Command{Verb: VerbScope, Arg: "role"}, true},
		{"category  Prep", Command{Verb: VerbCategory, Arg: "prep"}, true},
		{"cat line", Command{Verb: VerbCategory, Arg: "line"}, true},
		{"clear", Command{Verb: VerbCategory}, true},
		{"q", Command{Verb: VerbQuit}, true},
		{"   ", Command{}, false},
		{"launch", Command{}, false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
