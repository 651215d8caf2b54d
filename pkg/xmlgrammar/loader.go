// Package xmlgrammar loads a grammar from a declarative XML description.
//
// The schema is closed: a fixed set of elements (grammar, node, variable,
// action, alias, group) with a fixed set of typed attributes. Hooks —
// parse functions, candidate providers and callbacks — are referenced by
// name and looked up in a caller-supplied Registry; nothing in the XML is
// ever evaluated. Anything outside the schema is a *SchemaError, distinct
// from the core build errors.
package xmlgrammar

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gramline/gramline/pkg/grammar"
)

// Registry supplies the named hooks an XML grammar may reference.
type Registry struct {
	Parsers    map[string]grammar.ParseFunc
	Candidates map[string]grammar.CandidateFunc
	Callbacks  map[string]grammar.ActionFunc
}

// SchemaError reports XML outside the closed schema: an unknown element or
// attribute, a malformed typed value, or a hook name missing from the
// registry.
type SchemaError struct {
	Element string
	Attr    string // empty for element-level problems
	Reason  string
}

func (e *SchemaError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("xml grammar: <%s> %s=: %s", e.Element, e.Attr, e.Reason)
	}
	return fmt.Sprintf("xml grammar: <%s>: %s", e.Element, e.Reason)
}

// Load reads an XML grammar description and builds it. Schema violations
// return a *SchemaError; structural problems surface as the core build
// errors from grammar.New.
func Load(r io.Reader, reg *Registry) (*grammar.Grammar, error) {
	defs, err := decode(r, reg)
	if err != nil {
		return nil, err
	}
	return grammar.New(defs...)
}

// LoadFile is Load over the contents of path.
func LoadFile(path string, reg *Registry) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, reg)
}

// LoadString is Load over an inline document.
func LoadString(doc string, reg *Registry) (*grammar.Grammar, error) {
	return Load(strings.NewReader(doc), reg)
}

var elementKinds = map[string]grammar.Kind{
	"node":     grammar.KindRouting,
	"variable": grammar.KindVariable,
	"action":   grammar.KindAction,
	"alias":    grammar.KindAlias,
	"group":    grammar.KindGroup,
}

func decode(r io.Reader, reg *Registry) ([]grammar.Def, error) {
	d := xml.NewDecoder(r)

	root, err := nextElement(d)
	if err != nil {
		return nil, err
	}
	if root == nil || root.Name.Local != "grammar" {
		name := "(none)"
		if root != nil {
			name = root.Name.Local
		}
		return nil, &SchemaError{Element: name, Reason: `root element must be <grammar>`}
	}
	if len(root.Attr) != 0 {
		return nil, &SchemaError{Element: "grammar", Attr: root.Attr[0].Name.Local, Reason: "unknown attribute"}
	}
	return decodeChildren(d, reg)
}

// nextElement skips character data and comments up to the next start
// element, or returns nil at the matching end element / EOF.
func nextElement(d *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return &t, nil
		case xml.EndElement:
			return nil, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) != 0 {
				return nil, &SchemaError{Element: "grammar", Reason: "unexpected text content"}
			}
		}
	}
}

func decodeChildren(d *xml.Decoder, reg *Registry) ([]grammar.Def, error) {
	var defs []grammar.Def
	for {
		el, err := nextElement(d)
		if err != nil {
			return nil, err
		}
		if el == nil {
			return defs, nil
		}
		def, err := decodeElement(d, reg, el)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
}

func decodeElement(d *xml.Decoder, reg *Registry, el *xml.StartElement) (grammar.Def, error) {
	kind, ok := elementKinds[el.Name.Local]
	if !ok {
		return grammar.Def{}, &SchemaError{Element: el.Name.Local, Reason: "unknown element"}
	}
	def := grammar.Def{Kind: kind}

	for _, a := range el.Attr {
		if err := setAttr(&def, reg, el.Name.Local, a); err != nil {
			return grammar.Def{}, err
		}
	}

	children, err := decodeChildren(d, reg)
	if err != nil {
		return grammar.Def{}, err
	}
	def.Children = children
	return def, nil
}

func setAttr(def *grammar.Def, reg *Registry, element string, a xml.Attr) error {
	bad := func(reason string) error {
		return &SchemaError{Element: element, Attr: a.Name.Local, Reason: reason}
	}

	switch a.Name.Local {
	case "name":
		def.Name = a.Value
	case "pattern":
		def.Pattern = a.Value
	case "help":
		def.Help = a.Value
	case "traversals":
		v, err := parseTraversals(a.Value)
		if err != nil {
			return bad(err.Error())
		}
		if def.Kind == grammar.KindGroup {
			def.GroupTraversals = v
		} else {
			def.Traversals = v
		}
	case "match-candidates":
		v, err := strconv.ParseBool(a.Value)
		if err != nil {
			return bad("not a boolean")
		}
		def.MatchCandidates = v
	case "var-name":
		if def.Kind != grammar.KindVariable {
			return bad("only valid on <variable>")
		}
		def.VarName = a.Value
	case "parse":
		if def.Kind != grammar.KindVariable {
			return bad("only valid on <variable>")
		}
		fn, ok := reg.Parsers[a.Value]
		if !ok {
			return bad(fmt.Sprintf("parser %q not registered", a.Value))
		}
		def.Parse = fn
	case "candidates":
		fn, ok := reg.Candidates[a.Value]
		if !ok {
			return bad(fmt.Sprintf("candidate provider %q not registered", a.Value))
		}
		def.Candidates = fn
	case "callback":
		if def.Kind != grammar.KindAction {
			return bad("only valid on <action>")
		}
		fn, ok := reg.Callbacks[a.Value]
		if !ok {
			return bad(fmt.Sprintf("callback %q not registered", a.Value))
		}
		def.Callback = fn
	case "needs-user":
		if def.Kind != grammar.KindAction {
			return bad("only valid on <action>")
		}
		v, err := strconv.ParseBool(a.Value)
		if err != nil {
			return bad("not a boolean")
		}
		def.NeedsUser = v
	case "target":
		if def.Kind != grammar.KindAlias {
			return bad("only valid on <alias>")
		}
		def.Target = a.Value
	default:
		return bad("unknown attribute")
	}
	return nil
}

func parseTraversals(v string) (int, error) {
	if v == "unlimited" {
		return grammar.Unlimited, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("want a non-negative integer or %q", "unlimited")
	}
	if n == 0 {
		return grammar.Unlimited, nil
	}
	return n, nil
}
