package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modlet-tools/internal/types"
)

// ParsePath compiles the restricted addressing grammar used by patch
// directives:
//
//	/tag/tag[@name='value']/tag[2]
//
// Each segment is a tag name with an optional attribute-equality predicate
// and an optional 0-based positional index. Predicate values are opaque byte
// strings in single or double quotes, compared byte-for-byte with no escape
// sequences. This is deliberately not XPath.
func ParsePath(raw string) (types.PathExpression, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.PathExpression{}, pathError(raw, "path expression must not be empty")
	}
	if !strings.HasPrefix(trimmed, "/") {
		return types.PathExpression{}, pathError(raw, "path expression must start with '/'")
	}
	expr := types.PathExpression{Raw: trimmed}
	rest := trimmed[1:]
	for rest != "" {
		segment, remainder, err := parseSegment(raw, rest)
		if err != nil {
			return types.PathExpression{}, err
		}
		expr.Segments = append(expr.Segments, segment)
		rest = remainder
	}
	if len(expr.Segments) == 0 {
		return types.PathExpression{}, pathError(raw, "path expression has no segments")
	}
	return expr, nil
}

func parseSegment(raw, input string) (types.PathSegment, string, error) {
	end := len(input)
	depth := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '/':
			if depth == 0 {
				end = i
			}
		}
		if end != len(input) {
			break
		}
	}
	body := input[:end]
	remainder := ""
	if end < len(input) {
		remainder = input[end+1:]
		if remainder == "" {
			return types.PathSegment{}, "", pathError(raw, "trailing '/' in path expression")
		}
	}

	segment := types.PathSegment{}
	tagEnd := strings.IndexByte(body, '[')
	if tagEnd == -1 {
		tagEnd = len(body)
	}
	segment.Tag = body[:tagEnd]
	if segment.Tag == "" {
		return types.PathSegment{}, "", pathError(raw, "segment is missing a tag name")
	}
	for qualifiers := body[tagEnd:]; qualifiers != ""; {
		if qualifiers[0] != '[' {
			return types.PathSegment{}, "", pathError(raw, fmt.Sprintf("unexpected %q in segment", qualifiers))
		}
		close := strings.IndexByte(qualifiers, ']')
		if close == -1 {
			return types.PathSegment{}, "", pathError(raw, "unterminated '[' in segment")
		}
		inner := qualifiers[1:close]
		qualifiers = qualifiers[close+1:]
		if strings.HasPrefix(inner, "@") {
			if segment.HasPredicate {
				return types.PathSegment{}, "", pathError(raw, "segment has more than one attribute predicate")
			}
			name, value, err := parsePredicate(raw, inner[1:])
			if err != nil {
				return types.PathSegment{}, "", err
			}
			segment.AttrName = name
			segment.AttrValue = value
			segment.HasPredicate = true
			continue
		}
		if segment.HasIndex {
			return types.PathSegment{}, "", pathError(raw, "segment has more than one positional index")
		}
		index, err := strconv.Atoi(inner)
		if err != nil || index < 0 {
			return types.PathSegment{}, "", pathError(raw, fmt.Sprintf("invalid positional index %q", inner))
		}
		segment.Index = index
		segment.HasIndex = true
	}
	return segment, remainder, nil
}

func parsePredicate(raw, input string) (string, string, error) {
	eq := strings.IndexByte(input, '=')
	if eq <= 0 {
		return "", "", pathError(raw, "attribute predicate must be @name='value'")
	}
	name := input[:eq]
	quoted := input[eq+1:]
	if len(quoted) < 2 {
		return "", "", pathError(raw, "attribute predicate value must be quoted")
	}
	quote := quoted[0]
	if quote != '\'' && quote != '"' {
		return "", "", pathError(raw, "attribute predicate value must be quoted")
	}
	if quoted[len(quoted)-1] != quote {
		return "", "", pathError(raw, "attribute predicate value is missing its closing quote")
	}
	return name, quoted[1 : len(quoted)-1], nil
}

func pathError(raw, msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("%s: %q", msg, raw))
}

// Resolve evaluates the expression against the live tree and returns matching
// node ids in document order (depth-first, left-to-right). An empty result is
// legal; callers decide whether that is a problem.
func Resolve(doc *Document, expr types.PathExpression) []types.NodeID {
	return resolve(doc, expr, false)
}

// resolveWithRemoved is the tombstone-inclusive variant used to tell a
// dangling reference (Conflict) apart from a path that never matched.
func resolveWithRemoved(doc *Document, expr types.PathExpression) []types.NodeID {
	return resolve(doc, expr, true)
}

func resolve(doc *Document, expr types.PathExpression, includeRemoved bool) []types.NodeID {
	current := []types.NodeID{types.DocumentRoot}
	for _, segment := range expr.Segments {
		var matched []types.NodeID
		for _, id := range current {
			for _, child := range doc.childIDs(id, includeRemoved) {
				if segmentMatches(doc, child, segment) {
					matched = append(matched, child)
				}
			}
		}
		if segment.HasIndex {
			if segment.Index >= len(matched) {
				return nil
			}
			matched = matched[segment.Index : segment.Index+1]
		}
		if len(matched) == 0 {
			return nil
		}
		current = matched
	}
	return current
}

func segmentMatches(doc *Document, id types.NodeID, segment types.PathSegment) bool {
	n := doc.nodes[id]
	if n.tag != segment.Tag {
		return false
	}
	if !segment.HasPredicate {
		return true
	}
	for _, attr := range n.attrs {
		if attr.Name == segment.AttrName {
			return attr.Value == segment.AttrValue
		}
	}
	return false
}
