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

// directiveKinds maps flat-normalized directive names to operation kinds, so
// patch files may spell them insertAfter, insert_after or INSERT-AFTER.
var directiveKinds = map[string]types.OpKind{
	"append":          types.OpAppend,
	"insertbefore":    types.OpInsertBefore,
	"insertafter":     types.OpInsertAfter,
	"set":             types.OpSet,
	"setattribute":    types.OpSetAttribute,
	"remove":          types.OpRemove,
	"removeattribute": types.OpRemoveAttribute,
	"csv":             types.OpCsv,
}

// fragmentKinds carry replacement content; textKinds carry a text payload;
// the rest must be empty.
var (
	fragmentKinds = map[types.OpKind]bool{
		types.OpAppend:       true,
		types.OpInsertBefore: true,
		types.OpInsertAfter:  true,
	}
	textKinds = map[types.OpKind]bool{
		types.OpSet:          true,
		types.OpSetAttribute: true,
		types.OpCsv:          true,
	}
)

// LoadPatch parses raw patch text into a typed, ordered operation list.
// Validation happens here, before any target document exists: every directive
// needs a parseable path, insert content must be a well-formed standalone
// fragment, attribute directives need a non-empty name. A malformed directive
// fails the whole file; LoadPatch never returns a partial document.
//
// The file is either a single directive element, or one wrapper element whose
// children are directives (the wrapper tag itself is not interpreted).
func LoadPatch(data []byte, source types.PatchSource) (types.PatchDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := types.PatchDocument{Source: source}

	root, err := nextElement(dec, data, source, 0)
	if err != nil {
		return types.PatchDocument{}, err
	}
	if root == nil {
		return types.PatchDocument{}, loadError(source, 0, 1, "patch file contains no directives", nil)
	}

	if kind, ok := directiveKinds[shared.FlatName(root.Name.Local)]; ok {
		op, err := parseDirective(dec, *root, kind, data, source, 0)
		if err != nil {
			return types.PatchDocument{}, err
		}
		doc.Ops = append(doc.Ops, op)
		return doc, nil
	}

	// Wrapper element: every child element must be a directive.
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return types.PatchDocument{}, loadError(source, len(doc.Ops),
				shared.LineAt(data, dec.InputOffset()), "malformed patch XML", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			line := shared.LineAt(data, dec.InputOffset())
			kind, ok := directiveKinds[shared.FlatName(t.Name.Local)]
			if !ok {
				return types.PatchDocument{}, loadError(source, len(doc.Ops), line,
					fmt.Sprintf("unknown directive <%s>", t.Name.Local), nil)
			}
			op, err := parseDirective(dec, t, kind, data, source, len(doc.Ops))
			if err != nil {
				return types.PatchDocument{}, err
			}
			doc.Ops = append(doc.Ops, op)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return types.PatchDocument{}, loadError(source, len(doc.Ops),
					shared.LineAt(data, dec.InputOffset()),
					"unexpected text between directives", nil)
			}
		case xml.EndElement:
			// wrapper close
		}
	}
	if len(doc.Ops) == 0 {
		return types.PatchDocument{}, loadError(source, 0, 1, "patch file contains no directives", nil)
	}
	return doc, nil
}

// nextElement skips whitespace, comments and the prolog up to the first
// element.
func nextElement(dec *xml.Decoder, data []byte, source types.PatchSource, opIndex int) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, loadError(source, opIndex,
				shared.LineAt(data, dec.InputOffset()), "malformed patch XML", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return &start, nil
		}
	}
}

func parseDirective(dec *xml.Decoder, start xml.StartElement, kind types.OpKind, data []byte, source types.PatchSource, opIndex int) (types.PatchOperation, error) {
	line := shared.LineAt(data, dec.InputOffset())
	op := types.PatchOperation{Kind: kind, Line: line}

	xpath := attrValue(start, "xpath")
	if strings.TrimSpace(xpath) == "" {
		return types.PatchOperation{}, loadError(source, opIndex, line,
			fmt.Sprintf("<%s> is missing its xpath attribute", start.Name.Local), nil)
	}
	path, err := ParsePath(xpath)
	if err != nil {
		return types.PatchOperation{}, loadError(source, opIndex, line, "invalid path expression", err)
	}
	op.Path = path

	switch kind {
	case types.OpSetAttribute, types.OpRemoveAttribute:
		op.Attr = attrValue(start, "name")
		if strings.TrimSpace(op.Attr) == "" {
			return types.PatchOperation{}, loadError(source, opIndex, line,
				fmt.Sprintf("<%s> requires a non-empty name attribute", start.Name.Local), nil)
		}
	case types.OpCsv:
		op.CsvDelim = attrValue(start, "delim")
		switch types.CsvOp(strings.ToLower(strings.TrimSpace(attrValue(start, "op")))) {
		case types.CsvAdd:
			op.CsvOp = types.CsvAdd
		case types.CsvRemove:
			op.CsvOp = types.CsvRemove
		default:
			return types.PatchOperation{}, loadError(source, opIndex, line,
				"csv op attribute must be add or remove", nil)
		}
	}

	frag, text, err := collectDirectiveBody(dec)
	if err != nil {
		return types.PatchOperation{}, loadError(source, opIndex, line, "malformed directive content", err)
	}

	switch {
	case fragmentKinds[kind]:
		if len(frag.Children(types.DocumentRoot)) == 0 {
			return types.PatchOperation{}, loadError(source, opIndex, line,
				fmt.Sprintf("<%s> requires element content", start.Name.Local), nil)
		}
		op.Fragment = frag.SerializeFragment()
	case textKinds[kind]:
		if len(frag.Children(types.DocumentRoot)) > 0 {
			return types.PatchOperation{}, loadError(source, opIndex, line,
				fmt.Sprintf("<%s> must not contain elements", start.Name.Local), nil)
		}
		op.Value = text
	default:
		if len(frag.Children(types.DocumentRoot)) > 0 || strings.TrimSpace(text) != "" {
			return types.PatchOperation{}, loadError(source, opIndex, line,
				fmt.Sprintf("<%s> must be an empty element", start.Name.Local), nil)
		}
	}
	return op, nil
}

// collectDirectiveBody consumes tokens up to the directive's end tag,
// building any nested elements into a fragment document and gathering text
// that sits directly inside the directive.
func collectDirectiveBody(dec *xml.Decoder) (*Document, string, error) {
	frag := newDocument()
	current := types.DocumentRoot
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make([]types.Attr, 0, len(t.Attr))
			for _, attr := range t.Attr {
				attrs = append(attrs, types.Attr{Name: attr.Name.Local, Value: attr.Value})
			}
			id := frag.newNode(t.Name.Local, attrs, current)
			frag.nodes[current].children = append(frag.nodes[current].children, id)
			current = id
		case xml.EndElement:
			if current == types.DocumentRoot {
				return frag, strings.TrimSpace(text.String()), nil
			}
			current = frag.nodes[current].parent
		case xml.CharData:
			chunk := strings.TrimSpace(string(t))
			if chunk == "" {
				continue
			}
			if current == types.DocumentRoot {
				if text.Len() > 0 {
					text.WriteByte(' ')
				}
				text.WriteString(chunk)
				continue
			}
			n := frag.nodes[current]
			if n.text == "" {
				n.text = chunk
			} else {
				n.text += " " + chunk
			}
		}
	}
}

func attrValue(start xml.StartElement, name string) string {
	for _, attr := range start.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func loadError(source types.PatchSource, opIndex, line int, msg string, cause error) error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("patch %s/%s, op %d, line %d: %s",
			source.Modlet, source.File, opIndex, line, msg))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return builder
}
