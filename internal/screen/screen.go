// Package screen implements a double shell-metacharacter screen: a
// strict screen applied per-field by a module's evaluate path, and a
// looser screen applied again to the final command string before any
// shell dispatch. Grounded on pkg/governance/allowlist.go's deny-pattern idiom.
package screen

import (
	"fmt"
	"strings"
)

// strictForbidden is rejected in any single templated field value.
const strictForbidden = ";{}()<>&*|=?[]$%+`"

// looseForbidden is rejected in a fully-assembled command string. It is a
// strict subset of strictForbidden — the final string legitimately
// contains characters (spaces, `-`, `/`) that individual arguments may
// not, but never a shell metacharacter that could reopen a new command.
const looseForbidden = ";<>&*?{}[]$\\"

// ScreenError reports which character tripped a screen and where.
type ScreenError struct {
	Phase string // "strict" or "loose"
	Value string
	Char  rune
}

func (e *ScreenError) Error() string {
	return fmt.Sprintf("%s screen rejected %q: forbidden character %q", e.Phase, e.Value, e.Char)
}

// Strict validates one templated argument before it is handed to the
// command helper library.
func Strict(value string) error {
	if i := strings.IndexAny(value, strictForbidden); i >= 0 {
		return &ScreenError{Phase: "strict", Value: value, Char: rune(value[i])}
	}
	return nil
}

// Loose validates the final assembled command string immediately before
// any shell dispatch. Running both screens is deliberate: Strict catches
// a bad field early with a precise location, Loose is the last line of
// defense against a templated value slipping through into a composed
// command.
func Loose(cmd string) error {
	if i := strings.IndexAny(cmd, looseForbidden); i >= 0 {
		return &ScreenError{Phase: "loose", Value: cmd, Char: rune(cmd[i])}
	}
	return nil
}
