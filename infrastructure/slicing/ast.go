package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Walker provides AST traversal utilities over tree-sitter nodes.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() Walker {
	return Walker{}
}

// WalkFunc is called for each node during traversal.
// Return false to stop traversal.
type WalkFunc func(node *sitter.Node) bool

// Walk performs a breadth-first traversal of the AST rooted at root.
func (w Walker) Walk(root *sitter.Node, fn WalkFunc) {
	if root == nil {
		return
	}

	seen := make(map[uintptr]struct{})
	queue := []*sitter.Node{root}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if _, ok := seen[node.ID()]; ok {
			continue
		}
		seen[node.ID()] = struct{}{}

		if !fn(node) {
			return
		}

		for i := uint32(0); i < node.ChildCount(); i++ {
			if child := node.Child(int(i)); child != nil {
				queue = append(queue, child)
			}
		}
	}
}

// CollectNodes returns all nodes whose type is in nodeTypes.
func (w Walker) CollectNodes(root *sitter.Node, nodeTypes []string) []*sitter.Node {
	wanted := make(map[string]struct{}, len(nodeTypes))
	for _, t := range nodeTypes {
		wanted[t] = struct{}{}
	}

	var nodes []*sitter.Node
	w.Walk(root, func(node *sitter.Node) bool {
		if _, ok := wanted[node.Type()]; ok {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

// CollectDescendants returns all descendants with the given type.
func (w Walker) CollectDescendants(root *sitter.Node, nodeType string) []*sitter.Node {
	return w.CollectNodes(root, []string{nodeType})
}

// NodeText extracts the source text covered by a node.
func (w Walker) NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	start, end := node.StartByte(), node.EndByte()
	if start >= uint32(len(source)) || end > uint32(len(source)) || start >= end {
		return ""
	}
	return string(source[start:end])
}

// identifierTypes covers the identifier node names across the grammars
// the slicer parses.
var identifierTypes = map[string]struct{}{
	"identifier":                    {},
	"type_identifier":               {},
	"field_identifier":              {},
	"property_identifier":           {},
	"shorthand_property_identifier": {},
}

// IsIdentifier checks if a node is an identifier type.
func (w Walker) IsIdentifier(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	_, ok := identifierTypes[node.Type()]
	return ok
}

// FindChildByType finds the first direct child with the specified type.
func (w Walker) FindChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if child != nil && child.Type() == nodeType {
			return child
		}
	}

	return nil
}

// FindDescendant finds the first descendant with the specified type.
func (w Walker) FindDescendant(root *sitter.Node, nodeType string) *sitter.Node {
	if root == nil {
		return nil
	}

	var result *sitter.Node
	w.Walk(root, func(node *sitter.Node) bool {
		if node.Type() == nodeType {
			result = node
			return false
		}
		return true
	})

	return result
}

// commentTypes covers the comment node names across the grammars the
// slicer parses.
var commentTypes = map[string]struct{}{
	"comment":       {},
	"line_comment":  {},
	"block_comment": {},
}

// IsComment checks if a node is a comment type.
func (w Walker) IsComment(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	_, ok := commentTypes[node.Type()]
	return ok
}

// CallGraph records which functions call which, in both directions.
type CallGraph struct {
	forward map[string]map[string]struct{}
	reverse map[string]map[string]struct{}
}

// NewCallGraph creates an empty CallGraph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// AddCall registers a caller → callee edge.
func (g *CallGraph) AddCall(caller, callee string) {
	addEdge(g.forward, caller, callee)
	addEdge(g.reverse, callee, caller)
}

func addEdge(edges map[string]map[string]struct{}, from, to string) {
	if edges[from] == nil {
		edges[from] = make(map[string]struct{})
	}
	edges[from][to] = struct{}{}
}

// Callees returns functions called by the given function.
func (g *CallGraph) Callees(name string) []string {
	return keys(g.forward[name])
}

// Callers returns functions that call the given function.
func (g *CallGraph) Callers(name string) []string {
	return keys(g.reverse[name])
}

func keys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// Dependencies walks the call graph breadth-first from name and returns
// the transitive callees, bounded by maxDepth hops and maxCount results.
func (g *CallGraph) Dependencies(name string, maxDepth, maxCount int) []string {
	type hop struct {
		name  string
		depth int
	}

	var result []string
	visited := make(map[string]struct{})
	queue := []hop{{name, 0}}

	for len(queue) > 0 && len(result) < maxCount {
		current := queue[0]
		queue = queue[1:]

		if current.depth > maxDepth {
			continue
		}
		if _, ok := visited[current.name]; ok {
			continue
		}
		visited[current.name] = struct{}{}

		if current.name != name {
			result = append(result, current.name)
		}

		for _, callee := range g.Callees(current.name) {
			if _, ok := visited[callee]; !ok {
				queue = append(queue, hop{callee, current.depth + 1})
			}
		}
	}

	return result
}
