package models

// SuggestionSource cites one knowledge entry used to ground a suggestion.
// Content is truncated to a preview; entries longer than the preview bound
// carry an ellipsis suffix.
type SuggestionSource struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// RAGSuggestion is the advisory answer synthesized for a new question. It
// lives for one request/response cycle. Err tags the degradation cause when
// the synthesizer fell back to a placeholder answer; it is never a hard
// failure for the caller.
type RAGSuggestion struct {
	Answer      string             `json:"answer"`
	ContextUsed bool               `json:"context_used"`
	Confidence  float64            `json:"confidence"`
	Sources     []SuggestionSource `json:"sources"`
	Err         string             `json:"error,omitempty"`
}
