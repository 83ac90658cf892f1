package models

// ChunkRecord is one indexed unit of text. The JSON keys are the
// persisted snapshot format.
type ChunkRecord struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// ScoredMatch pairs a record with its similarity to a query. Never
// persisted.
type ScoredMatch struct {
	ChunkRecord
	Score float64
}

// ChatMessage is one prior conversation turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Citation points an answer back at the chunk sources that grounded it.
type Citation struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// ChatResult is the outcome of one answer operation.
type ChatResult struct {
	Answer          string     `json:"answer"`
	Citations       []Citation `json:"citations"`
	RetrievedChunks int        `json:"retrieved_chunks"`
}

// IngestStats summarizes a full corpus rebuild.
type IngestStats struct {
	IndexedChunks  int `json:"indexed_chunks"`
	FilesProcessed int `json:"files_processed"`
}
