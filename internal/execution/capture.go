package execution

import "mcptest/internal/domain"

// streamWriter turns every Write from the exec copy goroutine into one chunk.
// Chunk boundaries are whatever the pipe read delivered.
type streamWriter struct {
	stream domain.Stream
	sink   chan<- domain.CapturedChunk
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	w.sink <- domain.CapturedChunk{Stream: w.stream, Text: string(p)}
	return len(p), nil
}

// collect owns the capture sequence: both stream writers feed one channel, so
// the slice is appended in arrival order by a single goroutine.
func collect(sink <-chan domain.CapturedChunk, onChunk func(domain.CapturedChunk), out chan<- []domain.CapturedChunk) {
	var chunks []domain.CapturedChunk
	for chunk := range sink {
		chunks = append(chunks, chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	out <- chunks
}
