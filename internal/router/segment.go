package router

import (
	"sort"
	"strings"
)

type segmentKind int

const (
	kindRoot segmentKind = iota
	kindStatic
	kindParam
)

// segment is one node of a method's path trie. Children are owned through
// static and param; parent is only followed to rebuild the path for
// diagnostics.
type segment struct {
	kind   segmentKind
	key    string // literal, or parameter name
	parent *segment
	static map[string]*segment
	param  *segment
	route  *Route
}

func newRoot() *segment {
	return &segment{kind: kindRoot}
}

func (s *segment) staticChild(literal string) *segment {
	if child, ok := s.static[literal]; ok {
		return child
	}
	if s.static == nil {
		s.static = make(map[string]*segment)
	}
	child := &segment{kind: kindStatic, key: literal, parent: s}
	s.static[literal] = child
	return child
}

func (s *segment) paramChild(name string) (*segment, bool) {
	if s.param != nil {
		return s.param, s.param.key == name
	}
	s.param = &segment{kind: kindParam, key: name, parent: s}
	return s.param, true
}

// String rebuilds the pattern leading to this node, e.g. "/users/:id".
func (s *segment) String() string {
	var parts []string
	for n := s; n != nil && n.kind != kindRoot; n = n.parent {
		if n.kind == kindParam {
			parts = append(parts, ":"+n.key)
		} else {
			parts = append(parts, n.key)
		}
	}
	if len(parts) == 0 {
		return "/"
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// walk visits every node below s, static children in key order.
func (s *segment) walk(fn func(*segment)) {
	fn(s)
	keys := make([]string, 0, len(s.static))
	for k := range s.static {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.static[k].walk(fn)
	}
	if s.param != nil {
		s.param.walk(fn)
	}
}
