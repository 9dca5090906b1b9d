// Package cst implements the incremental-in-spirit concrete syntax tree
// for a single Blueprint document. It plays the role the teacher's
// tree-sitter bindings play for source code (internal/core/types.go,
// internal/matcher/tree.go): a typed, walkable tree with named field
// access and byte/line/column positions, except there is no compiled
// grammar behind it — Blueprint has none in the reference pack, so this
// package is a hand-written lexer + recursive-descent parser instead of
// a smacker/go-tree-sitter binding (see DESIGN.md).
package cst

import "github.com/oxhq/blueprint-ls/core"

// Kind identifies the syntactic category of a Node.
type Kind string

const (
	KindSourceFile       Kind = "source_file"
	KindDescriptionBlock Kind = "description_block"
	KindModuleBlock      Kind = "module_block"
	KindFeatureBlock     Kind = "feature_block"
	KindRequirementBlock Kind = "requirement_block"
	KindConstraint       Kind = "constraint"
	KindDependsOn        Kind = "depends_on"
	KindReference        Kind = "reference"
	KindIdentifier       Kind = "identifier"
	KindComment          Kind = "comment"
	KindCodeBlock        Kind = "code_block"
	KindDescriptionText  Kind = "description_text"
	KindError            Kind = "ERROR"
)

// Node is one element of the CST. Leaf nodes (identifier, comment,
// description_text, code_block) carry their raw Text; container nodes
// carry Children and, for block nodes, a "name" field reachable via
// Field.
type Node struct {
	NodeKind Kind
	Text     string
	Loc      core.Location
	fields   map[string]*Node
	children []*Node
	errSeen  bool // true if this node, or any descendant, is an ERROR node
}

// Kind returns the node's syntactic kind.
func (n *Node) Kind() Kind { return n.NodeKind }

// Location returns the node's source span.
func (n *Node) Location() core.Location { return n.Loc }

// Children returns the node's typed children in document order.
func (n *Node) Children() []*Node { return n.children }

// Field returns the named field of a block node (currently only "name"
// is defined), or nil if absent.
func (n *Node) Field(name string) *Node {
	if n.fields == nil {
		return nil
	}
	return n.fields[name]
}

// HasError reports whether this node's subtree contains any ERROR node.
func (n *Node) HasError() bool { return n.errSeen }

func newNode(kind Kind, loc core.Location) *Node {
	return &Node{NodeKind: kind, Loc: loc}
}

func (n *Node) addChild(c *Node) {
	if c == nil {
		return
	}
	n.children = append(n.children, c)
	if c.errSeen {
		n.errSeen = true
	}
}

func (n *Node) setField(name string, c *Node) {
	if n.fields == nil {
		n.fields = make(map[string]*Node)
	}
	n.fields[name] = c
}

// IdentifierChildren returns the children of kind identifier, in order —
// used by the AST builder to read a reference's dotted parts.
func (n *Node) IdentifierChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.NodeKind == KindIdentifier {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenOfKind returns the children matching any of the given kinds, in
// document order. Used by the AST builder to find block children while
// skipping comments/description text.
func (n *Node) ChildrenOfKind(kinds ...Kind) []*Node {
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []*Node
	for _, c := range n.children {
		if want[c.NodeKind] {
			out = append(out, c)
		}
	}
	return out
}
