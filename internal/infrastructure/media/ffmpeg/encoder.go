package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"kinora/internal/domain/media"
	"kinora/internal/shared/logger"
)

const stderrTailBytes = 2048

type FFmpegEncoder struct {
	binaryPath string
	logger     logger.Interface
}

func NewFFmpegEncoder(binaryPath string, logger logger.Interface) *FFmpegEncoder {
	if binaryPath == "" {
		binaryPath = "ffmpeg"
	}
	return &FFmpegEncoder{
		binaryPath: binaryPath,
		logger:     logger,
	}
}

// Encode transcodes the source into one rendition file. Width is derived
// from the target height with scale=-2 so the aspect ratio survives and
// stays codec-friendly. Failures carry the tail of ffmpeg's stderr so the
// pipeline log has something actionable.
func (e *FFmpegEncoder) Encode(ctx context.Context, sourcePath, outputPath string, rung media.Rung) error {
	args := []string{
		"-y",
		"-i", sourcePath,
		"-vf", fmt.Sprintf("scale=-2:%d", rung.Height),
		"-c:v", "libx264",
		"-preset", "fast",
		"-maxrate", rung.MaxBitrate,
		"-bufsize", rung.MaxBitrate,
		"-threads", "0",
		"-c:a", "aac",
		"-b:a", "128k",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, e.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.logger.Infow("encoding rendition",
		"quality", rung.Quality.String(),
		"height", rung.Height,
		"maxrate", rung.MaxBitrate,
		"output", outputPath)

	if err := cmd.Run(); err != nil {
		detail := stderrTail(stderr.String())
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%v: %w", err, ctxErr)
		}
		e.logger.Errorw("ffmpeg encode failed",
			"quality", rung.Quality.String(),
			"error", err,
			"stderr", detail)
		return &media.EncodeError{
			Quality: rung.Quality,
			Detail:  detail,
			Err:     err,
		}
	}

	return nil
}

// stderrTail keeps the last couple of KB of ffmpeg output, which is where
// the actual error lands on long encodes.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTailBytes {
		s = s[len(s)-stderrTailBytes:]
	}
	return s
}
