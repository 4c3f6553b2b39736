package types

// PathSegment is one step of a path expression: a tag name with an optional
// attribute-equality predicate and an optional 0-based positional index.
type PathSegment struct {
	Tag          string
	AttrName     string
	AttrValue    string
	HasPredicate bool
	Index        int
	HasIndex     bool
}

// PathExpression addresses nodes in a document. Segments are evaluated
// left-to-right from the document root; each segment narrows the candidate
// set to matching children of the previous segment's matches.
type PathExpression struct {
	Raw      string
	Segments []PathSegment
}

func (p PathExpression) String() string {
	return p.Raw
}

// IsZero reports whether the expression was never parsed.
func (p PathExpression) IsZero() bool {
	return p.Raw == "" && len(p.Segments) == 0
}
