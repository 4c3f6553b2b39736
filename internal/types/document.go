package types

// NodeID identifies one element in a parsed document. IDs are assigned by a
// monotonic counter at parse time and are never reused, so a NodeID stays
// valid as an address across mutations (including removal, where the node
// becomes a tombstone).
type NodeID int

// DocumentRoot is the synthetic node owning the top-level element of every
// parsed document.
const DocumentRoot NodeID = 0

// Attr is one attribute on an element. Order within a node is meaningful and
// preserved through serialization; names are unique within a node.
type Attr struct {
	Name  string
	Value string
}
