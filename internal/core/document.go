package core

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modlet-tools/internal/shared"
	"modlet-tools/internal/types"
)

// node is one arena entry. The children slice keeps document order and also
// holds tombstones; live traversal filters on the removed flag.
type node struct {
	id       types.NodeID
	tag      string
	attrs    []types.Attr
	text     string
	parent   types.NodeID
	children []types.NodeID
	removed  bool
}

// Document is an in-memory XML tree backed by an arena of nodes indexed by
// NodeID. Node 0 is a synthetic document node owning the top-level element;
// it is not addressable by path expressions. IDs are assigned by a monotonic
// counter and never reused, so removed nodes stay in the arena as tombstones
// and dangling references remain distinguishable from paths that never
// matched.
type Document struct {
	nodes []*node
}

// NodeView is a read-only projection of one element.
type NodeView struct {
	ID    types.NodeID
	Tag   string
	Attrs []types.Attr
	Text  string
}

// ParseDocument parses a well-formed XML document into an arena tree.
// Comments, processing instructions and insignificant whitespace are dropped;
// element order, attribute order and text content are preserved.
func ParseDocument(data []byte) (*Document, error) {
	doc := newDocument()
	if err := doc.parseInto(data, false); err != nil {
		return nil, err
	}
	if len(doc.nodes[types.DocumentRoot].children) != 1 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("document must have exactly one top-level element")
	}
	return doc, nil
}

// ParseFragment parses standalone patch content: one or more sibling
// elements, each becoming a child of the synthetic document node.
func ParseFragment(data []byte) (*Document, error) {
	doc := newDocument()
	if err := doc.parseInto(data, true); err != nil {
		return nil, err
	}
	if len(doc.nodes[types.DocumentRoot].children) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("fragment contains no elements")
	}
	return doc, nil
}

func newDocument() *Document {
	doc := &Document{}
	doc.nodes = append(doc.nodes, &node{id: types.DocumentRoot, parent: -1})
	return doc
}

func (d *Document) parseInto(data []byte, allowSiblingRoots bool) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	current := types.DocumentRoot
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("malformed XML at line %d", shared.LineAt(data, dec.InputOffset()))).
				WithCause(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if current == types.DocumentRoot && !allowSiblingRoots &&
				len(d.nodes[types.DocumentRoot].children) > 0 {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("document must have exactly one top-level element")
			}
			attrs := make([]types.Attr, 0, len(t.Attr))
			for _, attr := range t.Attr {
				attrs = append(attrs, types.Attr{Name: attr.Name.Local, Value: attr.Value})
			}
			id := d.newNode(t.Name.Local, attrs, current)
			d.nodes[current].children = append(d.nodes[current].children, id)
			current = id
		case xml.EndElement:
			current = d.nodes[current].parent
		case xml.CharData:
			if current == types.DocumentRoot {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			if d.nodes[current].text == "" {
				d.nodes[current].text = text
			} else {
				d.nodes[current].text += " " + text
			}
		default:
			// Comments, directives and processing instructions are not part
			// of the structural contract.
		}
	}
	return nil
}

func (d *Document) newNode(tag string, attrs []types.Attr, parent types.NodeID) types.NodeID {
	id := types.NodeID(len(d.nodes))
	d.nodes = append(d.nodes, &node{id: id, tag: tag, attrs: attrs, parent: parent})
	return id
}

// Node returns a read-only view of the node, if it exists in the arena.
// Tombstoned nodes are still viewable.
func (d *Document) Node(id types.NodeID) (NodeView, bool) {
	n, ok := d.lookup(id)
	if !ok {
		return NodeView{}, false
	}
	return NodeView{
		ID:    n.id,
		Tag:   n.tag,
		Attrs: append([]types.Attr(nil), n.attrs...),
		Text:  n.text,
	}, true
}

// Children returns the live children of a node in document order.
func (d *Document) Children(id types.NodeID) []types.NodeID {
	return d.childIDs(id, false)
}

// Parent returns the owning node. The synthetic document node has no parent.
func (d *Document) Parent(id types.NodeID) (types.NodeID, bool) {
	n, ok := d.lookup(id)
	if !ok || n.parent < 0 {
		return 0, false
	}
	return n.parent, true
}

// Removed reports whether the node was detached earlier in this document's
// lifetime.
func (d *Document) Removed(id types.NodeID) bool {
	n, ok := d.lookup(id)
	return ok && n.removed
}

func (d *Document) childIDs(id types.NodeID, includeRemoved bool) []types.NodeID {
	n, ok := d.lookup(id)
	if !ok {
		return nil
	}
	if includeRemoved {
		return append([]types.NodeID(nil), n.children...)
	}
	var live []types.NodeID
	for _, child := range n.children {
		if !d.nodes[child].removed {
			live = append(live, child)
		}
	}
	return live
}

func (d *Document) lookup(id types.NodeID) (*node, bool) {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil, false
	}
	return d.nodes[id], true
}

// InsertChildAt grafts every top-level element of the fragment under parent,
// starting at the given live child index. Index len(children) appends.
func (d *Document) InsertChildAt(parent types.NodeID, index int, frag *Document) error {
	n, ok := d.lookup(parent)
	if !ok || n.removed {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("insert parent does not exist: node %d", parent))
	}
	live := d.childIDs(parent, false)
	if index < 0 || index > len(live) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("insert index %d out of range for %d children", index, len(live)))
	}
	at := len(n.children)
	if index < len(live) {
		at = d.slicePosition(n, live[index])
	}
	var grafted []types.NodeID
	for _, rootChild := range frag.childIDs(types.DocumentRoot, false) {
		grafted = append(grafted, d.importNode(frag, rootChild, parent))
	}
	n.children = append(n.children[:at], append(grafted, n.children[at:]...)...)
	return nil
}

// AppendChild grafts the fragment's elements as the last children of parent.
func (d *Document) AppendChild(parent types.NodeID, frag *Document) error {
	return d.InsertChildAt(parent, len(d.childIDs(parent, false)), frag)
}

// importNode deep-copies a subtree from another arena, assigning fresh ids.
func (d *Document) importNode(src *Document, srcID, parent types.NodeID) types.NodeID {
	sn := src.nodes[srcID]
	id := d.newNode(sn.tag, append([]types.Attr(nil), sn.attrs...), parent)
	d.nodes[id].text = sn.text
	for _, child := range sn.children {
		if src.nodes[child].removed {
			continue
		}
		d.nodes[id].children = append(d.nodes[id].children, d.importNode(src, child, id))
	}
	return id
}

// LiveIndex returns the position of id among its parent's live children.
func (d *Document) LiveIndex(parent, id types.NodeID) (int, error) {
	for i, child := range d.childIDs(parent, false) {
		if child == id {
			return i, nil
		}
	}
	return 0, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("node %d is not a live child of node %d", id, parent))
}

func (d *Document) slicePosition(parent *node, id types.NodeID) int {
	for i, child := range parent.children {
		if child == id {
			return i
		}
	}
	return len(parent.children)
}

// RemoveNode detaches the node and its subtree, leaving a tombstone in the
// arena. The top-level element cannot be removed.
func (d *Document) RemoveNode(id types.NodeID) error {
	n, ok := d.lookup(id)
	if !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("cannot remove unknown node %d", id))
	}
	if id == types.DocumentRoot || n.parent == types.DocumentRoot {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cannot remove the document root")
	}
	if n.removed {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("node %d is already removed", id))
	}
	n.removed = true
	return nil
}

// SetAttr sets the named attribute, creating it if absent, preserving
// attribute order otherwise.
func (d *Document) SetAttr(id types.NodeID, name, value string) error {
	n, err := d.mutableNode(id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("attribute name must not be empty")
	}
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return nil
		}
	}
	n.attrs = append(n.attrs, types.Attr{Name: name, Value: value})
	return nil
}

// RemoveAttr deletes the named attribute. A missing attribute is not an error.
func (d *Document) RemoveAttr(id types.NodeID, name string) error {
	n, err := d.mutableNode(id)
	if err != nil {
		return err
	}
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return nil
		}
	}
	return nil
}

// SetText replaces the node's text content.
func (d *Document) SetText(id types.NodeID, text string) error {
	n, err := d.mutableNode(id)
	if err != nil {
		return err
	}
	n.text = text
	return nil
}

func (d *Document) mutableNode(id types.NodeID) (*node, error) {
	n, ok := d.lookup(id)
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("node does not exist: %d", id))
	}
	if id == types.DocumentRoot {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("the document node cannot be mutated directly")
	}
	if n.removed {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("node %d was removed earlier in this run", id))
	}
	return n, nil
}

// Serialize encodes the live tree back to XML. Element, attribute and child
// ordering round-trip verbatim; whitespace between tags is normalized to
// two-space indentation.
func (d *Document) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	for _, child := range d.childIDs(types.DocumentRoot, false) {
		d.writeNode(&buf, child, 0)
	}
	return buf.Bytes(), nil
}

// SerializeFragment encodes the live tree without an XML declaration, for
// embedding as patch content.
func (d *Document) SerializeFragment() []byte {
	var buf bytes.Buffer
	for _, child := range d.childIDs(types.DocumentRoot, false) {
		d.writeNode(&buf, child, 0)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
}

func (d *Document) writeNode(buf *bytes.Buffer, id types.NodeID, depth int) {
	n := d.nodes[id]
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(n.tag)
	for _, attr := range n.attrs {
		buf.WriteByte(' ')
		buf.WriteString(attr.Name)
		buf.WriteString(`="`)
		buf.WriteString(escapeAttr(attr.Value))
		buf.WriteByte('"')
	}
	children := d.childIDs(id, false)
	switch {
	case len(children) == 0 && n.text == "":
		buf.WriteString("/>\n")
	case len(children) == 0:
		buf.WriteByte('>')
		buf.WriteString(escapeText(n.text))
		buf.WriteString("</")
		buf.WriteString(n.tag)
		buf.WriteString(">\n")
	default:
		buf.WriteString(">\n")
		if n.text != "" {
			buf.WriteString(strings.Repeat("  ", depth+1))
			buf.WriteString(escapeText(n.text))
			buf.WriteByte('\n')
		}
		for _, child := range children {
			d.writeNode(buf, child, depth+1)
		}
		buf.WriteString(indent)
		buf.WriteString("</")
		buf.WriteString(n.tag)
		buf.WriteString(">\n")
	}
}

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

func escapeAttr(value string) string { return attrEscaper.Replace(value) }

func escapeText(value string) string { return textEscaper.Replace(value) }
