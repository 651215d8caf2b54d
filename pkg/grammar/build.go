package grammar

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Grammar is a resolved command grammar: an arena of nodes rooted at a
// single Root node. Aliases and groups from the Defs are dissolved during
// New; the resulting node graph is immutable and safe for concurrent
// readers.
type Grammar struct {
	nodes []*Node
	root  NodeID
}

// New builds and resolves a grammar from the given top-level Defs. It
// returns a *DefinitionError for an invalid node (bad pattern, negative
// traversal limit, duplicate sibling name) and an *AliasError for an alias
// that cannot be resolved. No partially built Grammar is ever returned.
func New(defs ...Def) (*Grammar, error) {
	b := &builder{
		g:        &Grammar{},
		children: map[NodeID][]slot{},
		paths:    map[NodeID]string{},
	}
	root := b.add(&Node{parent: NoNode, kind: KindRoot, name: ""}, "/")
	b.g.root = root

	if err := b.attach(root, "/", defs, 0); err != nil {
		return nil, err
	}
	if err := b.resolveAll(); err != nil {
		return nil, err
	}
	b.flatten()
	if err := b.checkZeroTokenCycles(); err != nil {
		return nil, err
	}
	return b.g, nil
}

// MustNew is New for static grammars; it panics on error.
func MustNew(defs ...Def) *Grammar {
	g, err := New(defs...)
	if err != nil {
		panic(err)
	}
	return g
}

// Root returns the root node.
func (g *Grammar) Root() *Node { return g.nodes[g.root] }

// Node returns the node with the given ID.
func (g *Grammar) Node(id NodeID) *Node { return g.nodes[id] }

// Len returns the number of nodes in the grammar, root included.
func (g *Grammar) Len() int { return len(g.nodes) }

// Path returns the absolute path of the node with the given ID.
func (g *Grammar) Path(id NodeID) string {
	var names []string
	for id != g.root {
		n := g.nodes[id]
		names = append(names, n.name)
		id = n.parent
	}
	if len(names) == 0 {
		return "/"
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/")
}

// Find returns the node at the given absolute path. The path addresses
// nodes by name through the resolved graph, so nodes attached by an alias
// are reachable both through their declaring parent and through the
// aliasing one.
func (g *Grammar) Find(p string) (*Node, error) {
	cur := g.root
	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			continue
		}
		found := false
		for _, id := range g.nodes[cur].children {
			if g.nodes[id].name == seg {
				cur = id
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("grammar: no node at path %q", p)
		}
	}
	return g.nodes[cur], nil
}

// Walk visits every node reachable from the root in depth-first declared
// order, each node once regardless of how many parents alias it. The walk
// stops early if fn returns false.
func (g *Grammar) Walk(fn func(n *Node) bool) {
	seen := make([]bool, len(g.nodes))
	var walk func(id NodeID) bool
	walk = func(id NodeID) bool {
		if seen[id] {
			return true
		}
		seen[id] = true
		if !fn(g.nodes[id]) {
			return false
		}
		for _, c := range g.nodes[id].children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(g.root)
}

// slot is one child position during the build: either a finished node or
// an alias still to be resolved into zero or more node edges.
type slot struct {
	id    NodeID
	alias *aliasSlot
}

type aliasSlot struct {
	path   string // the alias's own path, base for relative targets
	target string // target expression as written
	state  int    // 0 pending, 1 resolving, 2 done
	nodes  []NodeID
}

type builder struct {
	g        *Grammar
	children map[NodeID][]slot
	paths    map[NodeID]string
	aliases  []*aliasSlot
	anon     int
}

func (b *builder) add(n *Node, p string) NodeID {
	n.id = NodeID(len(b.g.nodes))
	b.g.nodes = append(b.g.nodes, n)
	b.paths[n.id] = p
	return n.id
}

// attach converts defs into nodes under parent. Group defs dissolve in
// place, applying their traversal override to descendants that did not set
// one explicitly; alias defs become pending slots resolved later.
func (b *builder) attach(parent NodeID, parentPath string, defs []Def, groupTraversals int) error {
	for _, d := range defs {
		switch d.Kind {
		case KindGroup:
			gt := d.GroupTraversals
			if gt == 0 {
				gt = groupTraversals
			}
			if err := b.validTraversals(parentPath, gt); err != nil {
				return err
			}
			if err := b.attach(parent, parentPath, d.Children, gt); err != nil {
				return err
			}
		case KindAlias:
			name := d.Name
			if name == "" {
				name = anonymousName(b.anon)
				b.anon++
			}
			a := &aliasSlot{path: joinPath(parentPath, name), target: d.Target}
			b.aliases = append(b.aliases, a)
			b.children[parent] = append(b.children[parent], slot{id: NoNode, alias: a})
		default:
			id, err := b.node(parent, parentPath, d, groupTraversals)
			if err != nil {
				return err
			}
			b.children[parent] = append(b.children[parent], slot{id: id})
			if err := b.attach(id, b.paths[id], d.Children, groupTraversals); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) node(parent NodeID, parentPath string, d Def, groupTraversals int) (NodeID, error) {
	name := d.Name
	if name == "" {
		if d.Kind != KindAction && d.Pattern == "" {
			return NoNode, defErr(parentPath, fmt.Sprintf("%s node needs a name or a pattern", d.Kind), nil)
		}
		name = anonymousName(b.anon)
		b.anon++
	}
	for _, s := range b.children[parent] {
		if s.id != NoNode && b.g.nodes[s.id].name == name {
			return NoNode, defErr(parentPath, fmt.Sprintf("duplicate child name %q", name), nil)
		}
	}
	p := joinPath(parentPath, name)

	limit, err := b.traversals(p, d.Traversals, groupTraversals)
	if err != nil {
		return NoNode, err
	}

	n := &Node{
		parent:          parent,
		kind:            d.Kind,
		name:            name,
		helpText:        d.Help,
		helpFn:          d.HelpFn,
		limit:           limit,
		matchCandidates: d.MatchCandidates,
		candidates:      d.Candidates,
		varName:         d.VarName,
		parse:           d.Parse,
		callback:        d.Callback,
		needsUser:       d.NeedsUser,
	}

	src := d.Pattern
	switch {
	case src == "" && d.Kind == KindAction:
		// end-of-input terminal, no pattern
	case src == "" && d.Kind == KindVariable:
		src = `\w+`
	case src == "":
		src = regexp.QuoteMeta(name)
		n.literal = true
	case src == name:
		n.literal = true
	}
	if src != "" {
		re, err := compilePattern(src)
		if err != nil {
			return NoNode, defErr(p, "invalid pattern", err)
		}
		n.patternSrc = src
		n.pattern = re
	}
	return b.add(n, p), nil
}

func (b *builder) traversals(p string, explicit, group int) (int, error) {
	v := explicit
	if v == 0 {
		v = group
	}
	if v == 0 {
		v = 1 // kind default: one traversal
	}
	if err := b.validTraversals(p, v); err != nil {
		return 0, err
	}
	if v == Unlimited {
		return 0, nil
	}
	return v, nil
}

func (b *builder) validTraversals(p string, v int) error {
	if v < Unlimited {
		return defErr(p, fmt.Sprintf("invalid traversal limit %d", v), nil)
	}
	return nil
}

// resolveAll resolves every alias slot against the declared structure.
// Resolution is demand-driven: looking up a target path may require
// resolving aliases along the way, and revisiting an alias already being
// resolved is a resolution cycle.
func (b *builder) resolveAll() error {
	for _, a := range b.aliases {
		if err := b.resolve(a); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) resolve(a *aliasSlot) error {
	switch a.state {
	case 2:
		return nil
	case 1:
		return aliasErr(path.Dir(a.path), a.target, "resolution cycle")
	}
	a.state = 1

	target := a.target
	if target == "" {
		return aliasErr(path.Dir(a.path), a.target, "empty target path")
	}
	if !strings.HasPrefix(target, "/") {
		target = path.Join(a.path, target)
	}
	target = path.Clean(target)

	nodes := []NodeID{b.g.root}
	for _, seg := range strings.Split(target, "/") {
		if seg == "" || seg == "." {
			continue
		}
		var next []NodeID
		for _, id := range nodes {
			matched, err := b.matchSegment(a, id, seg)
			if err != nil {
				return err
			}
			next = append(next, matched...)
		}
		nodes = next
		if len(nodes) == 0 {
			break
		}
	}
	if len(nodes) == 0 {
		return aliasErr(path.Dir(a.path), a.target, "target matches no nodes")
	}
	a.nodes = dedupe(nodes)
	a.state = 2
	return nil
}

// matchSegment returns the children of id whose names match the (possibly
// glob) path segment. Alias slots encountered along the way are resolved
// first so that a path may traverse an aliased branch.
func (b *builder) matchSegment(a *aliasSlot, id NodeID, seg string) ([]NodeID, error) {
	var out []NodeID
	for _, s := range b.children[id] {
		ids := []NodeID{s.id}
		if s.alias != nil {
			if err := b.resolve(s.alias); err != nil {
				return nil, err
			}
			ids = s.alias.nodes
		}
		for _, cid := range ids {
			ok, err := path.Match(seg, b.g.nodes[cid].name)
			if err != nil {
				return nil, aliasErr(path.Dir(a.path), a.target, "malformed target path")
			}
			if ok {
				out = append(out, cid)
			}
		}
	}
	return out, nil
}

// flatten replaces each parent's slot list with the final child edge list,
// splicing resolved alias targets at the alias's declared position. The
// same node reached through several paths keeps one identity; duplicate
// edges under one parent collapse.
func (b *builder) flatten() {
	for id, slots := range b.children {
		var edges []NodeID
		for _, s := range slots {
			if s.alias == nil {
				edges = append(edges, s.id)
				continue
			}
			edges = append(edges, s.alias.nodes...)
		}
		b.g.nodes[id].children = dedupe(edges)
	}
}

// checkZeroTokenCycles rejects grammars where a chain of nodes that can be
// entered without consuming input loops back on itself. Alias splices are
// the only way to create such an edge back to an ancestor.
func (b *builder) checkZeroTokenCycles() error {
	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(b.g.nodes))
	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		color[id] = grey
		for _, c := range b.g.nodes[id].children {
			if !b.g.nodes[c].MatchesEmpty() {
				continue
			}
			switch color[c] {
			case grey:
				return aliasErr(b.paths[id], b.paths[c], "zero-token cycle")
			case white:
				if err := visit(c); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}
	for id := range b.g.nodes {
		if color[id] == white {
			if err := visit(NodeID(id)); err != nil {
				return err
			}
		}
	}
	return nil
}

func dedupe(ids []NodeID) []NodeID {
	seen := map[NodeID]bool{}
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
