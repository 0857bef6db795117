package domain

// Verdict is the classification of a captured output sequence.
// Empty message fields mean nothing was extracted.
type Verdict struct {
	HasError              bool   `json:"hasError"`
	ErrorMessage          string `json:"errorMessage,omitempty"`
	ConnectionEstablished bool   `json:"connectionEstablished"`
	LastConnectionMessage string `json:"lastConnectionMessage,omitempty"`
}
