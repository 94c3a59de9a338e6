package media

import "context"

// SourceInfo holds the intrinsic properties of an uploaded source file.
type SourceInfo struct {
	Height          int
	Width           int
	DurationSeconds int
}

// Prober extracts SourceInfo from a video file on durable storage. It must
// return ErrSourceUnreadable (possibly wrapped) when the file is missing or
// has no video stream. Probing is a read-only operation.
type Prober interface {
	Probe(ctx context.Context, path string) (*SourceInfo, error)
}

// Encoder converts a source file into one output file at the given rung.
// One call handles one tier; the pipeline sequences calls across the ladder.
// Abnormal tool exits surface as *EncodeError.
type Encoder interface {
	Encode(ctx context.Context, sourcePath, outputPath string, rung Rung) error
}
