package ports

// OutputPort writes merged configuration documents.
type OutputPort interface {
	WriteDocument(name string, data []byte) error
}
