package router

import (
	"fmt"
	"strings"
)

// tree holds the routes of one method. The pattern "/" lives on the root.
type tree struct {
	root *segment
}

func newTree() *tree {
	return &tree{root: newRoot()}
}

type token struct {
	param bool
	value string
}

// compile splits a pattern into tokens, validating parameter names.
func compile(pattern string) ([]token, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPattern, pattern)
	}

	parts := splitPath(pattern)
	tokens := make([]token, 0, len(parts))
	for _, part := range parts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			if !validParamName(name) {
				return nil, fmt.Errorf("%w: %q in %q", ErrInvalidParamName, name, pattern)
			}
			tokens = append(tokens, token{param: true, value: name})
			continue
		}
		tokens = append(tokens, token{value: part})
	}
	return tokens, nil
}

// splitPath drops the query, trims each segment and skips empty ones.
func splitPath(path string) []string {
	if i := strings.IndexByte(path, '?'); i != -1 {
		path = path[:i]
	}
	raw := strings.Split(path, "/")
	parts := raw[:0]
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func validParamName(name string) bool {
	if name == "" || !isLetter(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isLetter(name[i]) && !(name[i] >= '0' && name[i] <= '9') {
			return false
		}
	}
	return true
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func (t *tree) insert(route *Route) error {
	tokens, err := compile(route.Pattern)
	if err != nil {
		return err
	}

	if len(tokens) == 0 {
		if t.root.route != nil {
			return fmt.Errorf("%w: %s /", ErrDuplicateRoot, route.Method)
		}
		t.root.route = route
		return nil
	}

	node := t.root
	for _, tok := range tokens {
		if !tok.param {
			node = node.staticChild(tok.value)
			continue
		}
		child, ok := node.paramChild(tok.value)
		if !ok {
			return fmt.Errorf("%w: %q conflicts with existing %s", ErrParamConflict, ":"+tok.value, child)
		}
		node = child
	}

	if node.route != nil {
		return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, route.Method, node)
	}
	node.route = route
	return nil
}

// lookup walks one level per segment, preferring a static match over the
// parameter child. It never backtracks.
func (t *tree) lookup(path string) (*Route, map[string]string) {
	node := t.root
	params := map[string]string{}

	for _, part := range splitPath(path) {
		if child, ok := node.static[part]; ok {
			node = child
			continue
		}
		if node.param == nil {
			return nil, nil
		}
		node = node.param
		params[node.key] = part
	}

	if node.route == nil {
		return nil, nil
	}
	return node.route, params
}
