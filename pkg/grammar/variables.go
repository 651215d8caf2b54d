package grammar

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Typed variable constructors. Each returns a KindVariable Def with a
// pattern and parse hook for a common token shape; all of them accept
// further children like NewVar does.

// Word matches an identifier-style token and stores it as a string.
func Word(name, help string, children ...Def) Def {
	return NewVar(name, help, `(?i)[A-Z_]\w*`, nil, children...)
}

// QuotedString matches a bare word or a single- or double-quoted string
// and stores the unquoted text.
func QuotedString(name, help string, children ...Def) Def {
	const pat = `\w+|"[^"\\]*(?:\\.[^"\\]*)*"|'[^'\\]*(?:\\.[^'\\]*)*'`
	return NewVar(name, help, pat, parseQuoted, children...)
}

func parseQuoted(token string) (any, error) {
	if len(token) >= 2 && (token[0] == '"' || token[0] == '\'') {
		return unescape(token[1 : len(token)-1]), nil
	}
	return token, nil
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Int matches a decimal integer and stores an int.
func Int(name, help string, children ...Def) Def {
	return NewVar(name, help, `-?\d+`, func(token string) (any, error) {
		return strconv.Atoi(token)
	}, children...)
}

// Float matches a floating point number and stores a float64.
func Float(name, help string, children ...Def) Def {
	const pat = `[-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?`
	return NewVar(name, help, pat, func(token string) (any, error) {
		return strconv.ParseFloat(token, 64)
	}, children...)
}

// Longer spellings come first: the pattern is an alternation and Go
// regexps take the first alternative that matches, so "enabled" must be
// tried before "enable".
var (
	boolTrue  = []string{"true", "yes", "on", "enabled", "enable", "1"}
	boolFalse = []string{"false", "no", "off", "disabled", "disable", "0"}
)

// Bool matches the usual boolean spellings (true/yes/on/enable/1 and their
// negations) and stores a bool.
func Bool(name, help string, children ...Def) Def {
	pat := `(?i)(?:` + strings.Join(append(append([]string{}, boolTrue...), boolFalse...), "|") + `)`
	d := NewVar(name, help, pat, func(token string) (any, error) {
		t := strings.ToLower(token)
		for _, w := range boolTrue {
			if t == w {
				return true, nil
			}
		}
		return false, nil
	}, children...)
	d.Candidates = func(partial string) []string {
		var out []string
		for _, w := range []string{"true", "false", "yes", "no", "on", "off"} {
			if strings.HasPrefix(w, partial) {
				out = append(out, w)
			}
		}
		return out
	}
	return d
}

// IPAddr matches an IPv4 or IPv6 address and stores a netip.Addr. The
// pattern is deliberately loose; the parse hook rejects anything
// net/netip will not accept, which fails the match per the usual variable
// parse error rules.
func IPAddr(name, help string, children ...Def) Def {
	return NewVar(name, help, `[0-9A-Fa-f:.]+`, func(token string) (any, error) {
		addr, err := netip.ParseAddr(token)
		if err != nil {
			return nil, err
		}
		return addr, nil
	}, children...)
}

// Hostname matches a dotted hostname and stores it as a string.
func Hostname(name, help string, children ...Def) Def {
	return NewVar(name, help, `(?i)[A-Z0-9][A-Z0-9_-]*(?:\.[A-Z0-9][A-Z0-9_-]*)*`, nil, children...)
}

// FileName matches a local path and offers directory listings as
// completion candidates. Directories complete with a trailing slash.
func FileName(name, help string, children ...Def) Def {
	d := NewVar(name, help, `\S+`, nil, children...)
	d.Candidates = fileCandidates
	return d
}

func fileCandidates(partial string) []string {
	dir, base := filepath.Split(partial)
	scan := dir
	if scan == "" {
		scan = "."
	}
	entries, err := os.ReadDir(scan)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		fn := e.Name()
		if !strings.HasPrefix(fn, base) {
			continue
		}
		if strings.HasPrefix(fn, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if e.IsDir() {
			fn += string(filepath.Separator)
		}
		out = append(out, dir+fn)
	}
	return out
}

// Choice matches exactly one of a fixed set of words, stores the matched
// word, and offers the set as completion candidates. The generic pattern
// would accept any token, so the candidate constraint does the real work.
func Choice(name, help string, choices []string, children ...Def) Def {
	d := NewVar(name, help, `\S+`, nil, children...)
	d.MatchCandidates = true
	d.Candidates = func(partial string) []string {
		var out []string
		for _, c := range choices {
			if strings.HasPrefix(c, partial) {
				out = append(out, c)
			}
		}
		return out
	}
	d.HelpFn = func() []HelpEntry {
		return []HelpEntry{{Key: "<" + name + ">", Text: fmt.Sprintf("%s (one of %s)", help, strings.Join(choices, ", "))}}
	}
	return d
}
