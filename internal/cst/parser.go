package cst

import (
	"strings"

	"github.com/oxhq/blueprint-ls/core"
)

// rank orders container kinds for the sequential (indentation-independent)
// nesting rule: a new block of rank R closes every open block of rank >= R
// before it is pushed. This matches the worked examples in spec.md §8 (S1),
// where @module/@feature/@requirement appear with no indentation at all yet
// still nest as M / M.F / M.F.R.
func rank(k Kind) int {
	switch k {
	case KindModuleBlock:
		return 0
	case KindFeatureBlock:
		return 1
	case KindRequirementBlock:
		return 2
	case KindConstraint:
		return 3
	}
	return -1
}

type frame struct {
	node *Node
	kind Kind
}

// Parse builds a CST for a single document's full text. Parsing never
// fails: unparseable fragments become ERROR nodes and well-formed
// siblings remain reachable (spec.md §4.1).
func Parse(file, text string) *Node {
	p := &parseState{
		file:   file,
		starts: lineStarts(text),
		lines:  lex(text),
	}
	return p.parseSourceFile()
}

type parseState struct {
	file   string
	starts []int
	lines  []logicalLine
}

func (p *parseState) byteAt(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(p.starts) {
		if len(p.starts) == 0 {
			return col
		}
		return p.starts[len(p.starts)-1] + col
	}
	return p.starts[line] + col
}

func (p *parseState) loc(sLine, sCol, eLine, eCol int) core.Location {
	return core.Location{
		File:      p.file,
		Start:     core.Position{Line: sLine, Col: sCol},
		End:       core.Position{Line: eLine, Col: eCol},
		StartByte: p.byteAt(sLine, sCol),
		EndByte:   p.byteAt(eLine, eCol),
	}
}

func (p *parseState) lineLoc(ll logicalLine) core.Location {
	return p.loc(ll.start.Line, ll.start.Col, ll.end.Line, ll.end.Col)
}

func (p *parseState) parseSourceFile() *Node {
	root := newNode(KindSourceFile, p.loc(0, 0, 0, 0))
	var stack []frame // open module/feature/requirement/constraint frames

	containerOf := func(k Kind) *Node {
		// Nearest open frame that can legally own a new block of kind k,
		// after popping frames of rank >= rank(k) and any open
		// description block (which never owns declarations).
		r := rank(k)
		for len(stack) > 0 && (rank(stack[len(stack)-1].kind) >= r || stack[len(stack)-1].kind == KindDescriptionBlock) {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return root
		}
		return stack[len(stack)-1].node
	}

	dependsOnOwner := func() (*Node, bool) {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].kind != KindConstraint {
				return stack[i].node, true
			}
		}
		return nil, false
	}

	textTarget := func() *Node {
		if len(stack) == 0 {
			return root
		}
		return stack[len(stack)-1].node
	}

	for i := 0; i < len(p.lines); i++ {
		ll := p.lines[i]
		switch ll.kind {
		case lineBlank:
			continue

		case lineComment:
			c := newNode(KindComment, p.lineLoc(ll))
			c.Text = ll.raw
			textTarget().addChild(c)

		case lineCodeBlock:
			c := newNode(KindCodeBlock, p.lineLoc(ll))
			c.Text = ll.raw
			textTarget().addChild(c)

		case lineText:
			c := newNode(KindDescriptionText, p.lineLoc(ll))
			c.Text = ll.rest
			textTarget().addChild(c)

		case lineDependsOn:
			owner, ok := dependsOnOwner()
			node := p.parseDependsOn(ll)
			if !ok {
				errNode := newNode(KindError, node.Loc)
				errNode.errSeen = true
				errNode.addChild(node)
				root.addChild(errNode)
			} else {
				owner.addChild(node)
			}

		case lineKeyword:
			switch ll.keyword {
			case "@description":
				stack = nil // description always closes every open block
				d := newNode(KindDescriptionBlock, p.lineLoc(ll))
				root.addChild(d)
				stack = append(stack, frame{node: d, kind: KindDescriptionBlock})

			case "@module":
				n := p.parseBlockHeader(KindModuleBlock, ll)
				root.addChild(n)
				stack = nil
				stack = append(stack, frame{node: n, kind: KindModuleBlock})

			case "@feature":
				parent := containerOf(KindFeatureBlock)
				n := p.parseBlockHeader(KindFeatureBlock, ll)
				if parent == root {
					// A feature always belongs to a module (M.F); one with
					// no open module is recovered as an ERROR sibling.
					wrapError(root, n)
				} else {
					parent.addChild(n)
				}
				stack = append(stack, frame{node: n, kind: KindFeatureBlock})

			case "@requirement":
				parent := containerOf(KindRequirementBlock)
				n := p.parseBlockHeader(KindRequirementBlock, ll)
				if parent == root {
					// A requirement needs an open module (module-direct) or
					// feature; with neither, it is recovered as an ERROR.
					wrapError(root, n)
				} else {
					parent.addChild(n)
				}
				stack = append(stack, frame{node: n, kind: KindRequirementBlock})

			case "@constraint":
				parent := containerOf(KindConstraint)
				n := p.parseBlockHeader(KindConstraint, ll)
				if parent == root {
					wrapError(root, n)
				} else {
					parent.addChild(n)
				}
				stack = append(stack, frame{node: n, kind: KindConstraint})
			}
		}
	}
	return root
}

func wrapError(root, n *Node) {
	e := newNode(KindError, n.Loc)
	e.errSeen = true
	e.addChild(n)
	root.addChild(e)
}

// parseBlockHeader builds a block node, reading its "name" field from the
// first whitespace-delimited token of the header line's remainder.
func (p *parseState) parseBlockHeader(kind Kind, ll logicalLine) *Node {
	n := newNode(kind, p.lineLoc(ll))
	name, nameStartCol, nameEndCol := firstToken(ll.rest)
	if name != "" {
		idLoc := p.loc(ll.start.Line, ll.restCol+nameStartCol, ll.start.Line, ll.restCol+nameEndCol)
		id := newNode(KindIdentifier, idLoc)
		id.Text = name
		n.setField("name", id)
		n.addChild(id)
	}
	return n
}

// firstToken returns the first run of non-whitespace characters in s and
// its [start,end) column offsets within s.
func firstToken(s string) (tok string, start, end int) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start = i
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	end = i
	return s[start:end], start, end
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// parseDependsOn parses a comma-separated list of dotted references from a
// @depends-on line's remainder.
func (p *parseState) parseDependsOn(ll logicalLine) *Node {
	n := newNode(KindDependsOn, p.lineLoc(ll))
	s := ll.rest
	fieldStart := 0
	flush := func(start, end int) {
		seg := s[start:end]
		trimStart, trimEnd := trimRange(seg)
		if trimEnd <= trimStart {
			return
		}
		ref := p.parseReference(ll.start.Line, ll.restCol+start+trimStart, seg[trimStart:trimEnd])
		if ref != nil {
			n.addChild(ref)
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			flush(fieldStart, i)
			fieldStart = i + 1
		}
	}
	flush(fieldStart, len(s))
	return n
}

func trimRange(s string) (int, int) {
	start := 0
	for start < len(s) && isSpace(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return start, end
}

// parseReference parses one dotted identifier chain ("a.b.c") starting at
// absolute column baseCol on the given line.
func (p *parseState) parseReference(line, baseCol int, text string) *Node {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, ".")
	startCol := baseCol
	endCol := baseCol + len(text)
	refLoc := p.loc(line, startCol, line, endCol)
	ref := newNode(KindReference, refLoc)
	col := baseCol
	for idx, part := range parts {
		idLoc := p.loc(line, col, line, col+len(part))
		id := newNode(KindIdentifier, idLoc)
		id.Text = part
		ref.addChild(id)
		col += len(part) + 1 // skip the '.'
		if idx == len(parts)-1 {
			break
		}
	}
	return ref
}
