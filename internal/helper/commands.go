// Package helper is the OS-conditional command helper library: every
// shell command a module ever runs is built here, never inline in a
// module. Every path and argument is screened again here even though
// the template engine already screened it once — the double screen is
// deliberate. Grounded on the use of small os_type-switched
// command builders and directly on
// original_source/src/tasks/cmd_library.rs, the library this package
// replaces line for line.
package helper

import (
	"fmt"

	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/screen"
)

// Recurse selects whether an ownership/mode/removal command applies to a
// directory tree or to a single path.
type Recurse bool

const (
	NoRecurse Recurse = false
	Recursive Recurse = true
)

func screenPath(path string) (string, error) {
	p := trim(path)
	if err := screen.Strict(p); err != nil {
		return "", err
	}
	return p, nil
}

func trim(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t' || s[j-1] == '\n' || s[j-1] == '\r') {
		j--
	}
	return s[i:j]
}

// GetMode returns the command that prints a path's permission bits as an
// octal string (on Linux, `stat %a` output such as "644", with no zero
// padding).
func GetMode(os inventory.OSKind, path string) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	switch os {
	case inventory.OSHPUX:
		return fmt.Sprintf(`perl -e '@x=stat("'%s'"); my $y=sprintf("%%4o", $x[2] & 07777); $y=~ s/^\s+//; print($y);'`, p), nil
	case inventory.OSMacOS:
		return fmt.Sprintf(`stat -f '%%A' '%s'`, p), nil
	case inventory.OSNetBSD, inventory.OSOpenBSD:
		return fmt.Sprintf(`stat -f '%%OLp' '%s'`, p), nil
	default:
		return fmt.Sprintf(`stat --format '%%a' '%s'`, p), nil
	}
}

// GetSHA512 returns the command that prints a path's SHA-512 digest as the
// first whitespace-delimited token of its output.
func GetSHA512(os inventory.OSKind, path string) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	switch os {
	case inventory.OSHPUX:
		return fmt.Sprintf(`shasum -a 512 '%s'`, p), nil
	case inventory.OSMacOS:
		return fmt.Sprintf(`shasum -b -a 512 '%s'`, p), nil
	case inventory.OSNetBSD:
		return fmt.Sprintf(`cksum -na sha512 '%s'`, p), nil
	case inventory.OSOpenBSD:
		return fmt.Sprintf(`cksum -r -a sha512 '%s'`, p), nil
	default:
		return fmt.Sprintf(`sha512sum '%s'`, p), nil
	}
}

// GetOwnership returns the command whose `ls -ld` output exposes owner and
// group at fields 2 and 3.
func GetOwnership(path string) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`ls -ld '%s'`, p), nil
}

// GetIsDirectory returns the command whose output's first byte is 'd' iff
// path is a directory.
func GetIsDirectory(path string) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`ls -ld '%s'`, p), nil
}

// GetTouch returns the command that creates path if absent, updating its mtime otherwise.
func GetTouch(path string) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`touch '%s'`, p), nil
}

// GetCreateDirectory returns the command that creates path and any missing parents.
func GetCreateDirectory(path string) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`mkdir -p '%s'`, p), nil
}

// GetDeleteFile returns the command that removes a single file, ignoring absence.
func GetDeleteFile(path string) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`rm -f '%s'`, p), nil
}

// GetDeleteDirectory returns the command that removes a directory, recursively when recurse is Recursive.
func GetDeleteDirectory(path string, recurse Recurse) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	if recurse == Recursive {
		return fmt.Sprintf(`rm -rf '%s'`, p), nil
	}
	return fmt.Sprintf(`rmdir '%s'`, p), nil
}

// SetOwner returns the command that chowns path to owner.
func SetOwner(path, owner string, recurse Recurse) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	if err := screen.Strict(owner); err != nil {
		return "", err
	}
	if recurse == Recursive {
		return fmt.Sprintf(`chown -R '%s' '%s'`, owner, p), nil
	}
	return fmt.Sprintf(`chown '%s' '%s'`, owner, p), nil
}

// SetGroup returns the command that chgrps path to group.
func SetGroup(path, group string, recurse Recurse) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	if err := screen.Strict(group); err != nil {
		return "", err
	}
	if recurse == Recursive {
		return fmt.Sprintf(`chgrp -R '%s' '%s'`, group, p), nil
	}
	return fmt.Sprintf(`chgrp '%s' '%s'`, group, p), nil
}

// SetMode returns the command that chmods path to mode, an octal string
// (IsOctalString must have already accepted it).
func SetMode(path, mode string, recurse Recurse) (string, error) {
	p, err := screenPath(path)
	if err != nil {
		return "", err
	}
	if !IsOctalString(mode) {
		return "", fmt.Errorf("not an octal string: %s", mode)
	}
	if recurse == Recursive {
		return fmt.Sprintf(`chmod -R '%s' '%s'`, mode, p), nil
	}
	return fmt.Sprintf(`chmod '%s' '%s'`, mode, p), nil
}

// GetArch returns the command that prints the host's machine architecture.
// Not present in the module library this package is grounded on; added by
// analogy to the uname -s OS probe already used by the connection layer.
func GetArch() string {
	return `uname -m`
}

// IsOctalString reports whether mode looks like a 3-4 digit octal file
// mode (e.g. "644", "0755").
func IsOctalString(mode string) bool {
	if len(mode) < 3 || len(mode) > 4 {
		return false
	}
	for _, r := range mode {
		if r < '0' || r > '7' {
			return false
		}
	}
	return true
}
