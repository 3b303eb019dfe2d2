package graph

import (
	"maps"

	"github.com/matzehuels/domgraph/pkg/errors"
)

// Build converts tag groups into a containment graph.
//
// Node 0 is the document root. Each tag in order gets the next id, followed
// by its elements in order, so every call on the same input assigns the same
// ids. An empty payload yields a root-only graph.
func Build(groups TagGroups) (*Graph, error) {
	b := builder{g: &Graph{
		Nodes: make([]*Node, 0, 1+len(groups)+groups.ElementCount()),
		Links: make([]Link, 0, len(groups)+groups.ElementCount()),
	}}

	root := b.add(&Node{Name: RootName, Type: TypeRoot, Level: LevelRoot})

	seen := make(map[string]bool, len(groups))
	for _, group := range groups {
		if err := errors.ValidateTagName(group.Tag); err != nil {
			return nil, err
		}
		if seen[group.Tag] {
			return nil, errors.New(errors.ErrCodeMalformedInput, "duplicate tag %q", group.Tag)
		}
		seen[group.Tag] = true

		tag := b.add(&Node{
			Name:  group.Tag,
			Type:  TypeTag,
			Level: LevelTag,
			Data:  NodeData{Tag: group.Tag, Count: len(group.Elements)},
		})
		b.link(root, tag)

		for _, el := range group.Elements {
			node := b.add(&Node{
				Name:  elementName(group.Tag, el),
				Type:  TypeElement,
				Level: LevelElement,
				Data: NodeData{
					Tag:        group.Tag,
					Attributes: copyAttributes(el.Attributes),
					Content:    el.InnerText,
				},
			})
			b.link(tag, node)
		}
	}
	return b.g, nil
}

// BuildJSON parses a tag-grouped payload and builds its graph.
func BuildJSON(data []byte) (*Graph, error) {
	groups, err := ParseTagGroups(data)
	if err != nil {
		return nil, err
	}
	return Build(groups)
}

type builder struct {
	g      *Graph
	nextID int
}

func (b *builder) add(n *Node) int {
	n.ID = b.nextID
	b.nextID++
	b.g.Nodes = append(b.g.Nodes, n)
	return n.ID
}

func (b *builder) link(source, target int) {
	b.g.Links = append(b.g.Links, Link{Source: source, Target: target, Value: 1, Type: LinkContains})
}

// elementName labels an element by its tag, suffixed with "#id" when the
// element carries a non-empty id attribute.
func elementName(tag string, el Element) string {
	if id := el.Attributes["id"]; id != "" {
		return tag + "#" + id
	}
	return tag
}

func copyAttributes(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	return maps.Clone(attrs)
}
