package ast

import (
	"strings"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/cst"
)

// Build transforms a parsed CST into a Document (spec.md §4.2).
func Build(uri string, root *cst.Node) *Document {
	doc := &Document{URI: uri}

	var descs []*Description
	seenModule := false
	children := unwrapErrors(root.Children())
	for _, c := range children {
		switch c.Kind() {
		case cst.KindDescriptionBlock:
			d := buildDescription(c)
			if seenModule {
				doc.MisplacedDescriptions = append(doc.MisplacedDescriptions, d)
			}
			descs = append(descs, d)
		case cst.KindModuleBlock:
			seenModule = true
			doc.Modules = append(doc.Modules, buildModule(c))
		}
	}
	if len(descs) > 0 {
		doc.Description = descs[len(descs)-1]
		doc.ExtraDescriptions = descs[:len(descs)-1]
	}
	doc.Errors = collectErrorLocations(root)
	return doc
}

// unwrapErrors replaces every ERROR node in a child list with its own
// children, exactly one level deep, so recovered elements still index
// (spec.md §4.2).
func unwrapErrors(children []*cst.Node) []*cst.Node {
	var out []*cst.Node
	for _, c := range children {
		if c.Kind() == cst.KindError {
			out = append(out, c.Children()...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func collectErrorLocations(n *cst.Node) []core.Location {
	var out []core.Location
	var walk func(*cst.Node)
	walk = func(n *cst.Node) {
		if n.Kind() == cst.KindError {
			out = append(out, n.Location())
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(n)
	return out
}

func buildDescription(n *cst.Node) *Description {
	return &Description{
		Text:     collectText(n),
		Location: n.Location(),
	}
}

// collectText concatenates description_text and code_block children,
// joined by newlines and trimmed, per spec.md §4.2.
func collectText(n *cst.Node) string {
	var parts []string
	for _, c := range unwrapErrors(n.Children()) {
		switch c.Kind() {
		case cst.KindDescriptionText, cst.KindCodeBlock:
			parts = append(parts, c.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func collectDependsOn(n *cst.Node) []core.Reference {
	var out []core.Reference
	for _, dep := range n.ChildrenOfKind(cst.KindDependsOn) {
		for _, refNode := range dep.ChildrenOfKind(cst.KindReference) {
			ids := refNode.IdentifierChildren()
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = id.Text
			}
			out = append(out, core.Reference{Parts: parts, Location: refNode.Location()})
		}
	}
	return out
}

func nameOf(n *cst.Node) (string, core.Location) {
	nameNode := n.Field("name")
	if nameNode == nil {
		return "", n.Location()
	}
	return nameNode.Text, nameNode.Location()
}

func buildModule(n *cst.Node) *Module {
	name, nameLoc := nameOf(n)
	m := &Module{
		Container: Container{
			Name:        name,
			Path:        name,
			Description: collectText(n),
			NameLoc:     nameLoc,
			Location:    n.Location(),
			DependsOn:   collectDependsOn(n),
		},
	}
	for _, c := range unwrapErrors(n.Children()) {
		switch c.Kind() {
		case cst.KindFeatureBlock:
			m.Features = append(m.Features, buildFeature(c, m.Path))
		case cst.KindRequirementBlock:
			m.Requirements = append(m.Requirements, buildRequirement(c, m.Path))
		case cst.KindConstraint:
			m.Constraints = append(m.Constraints, buildConstraint(c, m.Path))
		}
	}
	return m
}

func buildFeature(n *cst.Node, modulePath string) *Feature {
	name, nameLoc := nameOf(n)
	path := core.JoinPath(modulePath, name)
	f := &Feature{
		Container: Container{
			Name:        name,
			Path:        path,
			Description: collectText(n),
			NameLoc:     nameLoc,
			Location:    n.Location(),
			DependsOn:   collectDependsOn(n),
		},
	}
	for _, c := range unwrapErrors(n.Children()) {
		switch c.Kind() {
		case cst.KindRequirementBlock:
			f.Requirements = append(f.Requirements, buildRequirement(c, path))
		case cst.KindConstraint:
			f.Constraints = append(f.Constraints, buildConstraint(c, path))
		}
	}
	return f
}

func buildRequirement(n *cst.Node, parentPath string) *Requirement {
	name, nameLoc := nameOf(n)
	path := core.JoinPath(parentPath, name)
	r := &Requirement{
		Container: Container{
			Name:        name,
			Path:        path,
			Description: collectText(n),
			NameLoc:     nameLoc,
			Location:    n.Location(),
			DependsOn:   collectDependsOn(n),
		},
	}
	for _, c := range unwrapErrors(n.Children()) {
		if c.Kind() == cst.KindConstraint {
			r.Constraints = append(r.Constraints, buildConstraint(c, path))
		}
	}
	return r
}

func buildConstraint(n *cst.Node, parentPath string) *Constraint {
	name, nameLoc := nameOf(n)
	path := core.JoinPath(parentPath, name)
	return &Constraint{
		Name:        name,
		Path:        path,
		Description: collectText(n),
		NameLoc:     nameLoc,
		Location:    n.Location(),
	}
}
