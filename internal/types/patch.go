package types

// OpKind enumerates the patch directive vocabulary.
type OpKind string

const (
	OpAppend          OpKind = "append"
	OpInsertBefore    OpKind = "insert_before"
	OpInsertAfter     OpKind = "insert_after"
	OpSet             OpKind = "set"
	OpSetAttribute    OpKind = "set_attribute"
	OpRemove          OpKind = "remove"
	OpRemoveAttribute OpKind = "remove_attribute"
	OpCsv             OpKind = "csv"
)

// CsvOp selects how a csv directive edits the delimited list.
type CsvOp string

const (
	CsvAdd    CsvOp = "add"
	CsvRemove CsvOp = "remove"
)

// PatchSource identifies where a patch document came from, for diagnostics.
type PatchSource struct {
	Modlet string `yaml:"modlet"`
	File   string `yaml:"file"`
}

// PatchOperation is one typed directive. Parsing an operation is
// order-independent; its effect depends on execution order relative to other
// operations touching overlapping nodes.
type PatchOperation struct {
	Kind OpKind
	Path PathExpression

	// Attr is the attribute name for set_attribute / remove_attribute.
	Attr string
	// Value is the text payload for set, set_attribute and csv.
	Value string
	// Fragment is the replacement content for append / insert operations,
	// validated as a standalone XML fragment at load time.
	Fragment []byte

	CsvOp    CsvOp
	CsvDelim string

	// Line is the 1-based line of the directive in its source file.
	Line int
}

// PatchDocument is an ordered sequence of operations from one file. Order is
// meaningful: later operations see earlier operations' mutations.
type PatchDocument struct {
	Source PatchSource
	Ops    []PatchOperation
}
