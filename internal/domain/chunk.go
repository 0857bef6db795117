package domain

// Stream identifies which child output stream a chunk came from
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// CapturedChunk is one read from a child process stream.
// Text is not guaranteed to be a whole line.
type CapturedChunk struct {
	Stream Stream `json:"type" yaml:"type"`
	Text   string `json:"data" yaml:"data"`
}
