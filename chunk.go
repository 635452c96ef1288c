package concierge

// Chunk is a bounded-size fragment of a Document's content. It carries the
// parent's metadata unchanged.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`

	// Position is the chunk's order within its parent document.
	Position int `json:"position"`
}

// Splitter splits documents into overlapping chunks sized for embedding.
type Splitter interface {
	// Split returns chunks for all documents. Chunks of one document are
	// returned contiguously in source order.
	Split(docs []*Document) ([]*Chunk, error)
}
