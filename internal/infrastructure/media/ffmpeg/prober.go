// Package ffmpeg shells out to ffprobe/ffmpeg for source inspection and
// rendition encoding.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"

	"kinora/internal/domain/media"
	"kinora/internal/shared/logger"
)

// probeOutput mirrors the JSON emitted by ffprobe -print_format json.
type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type probeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type FFprobeProber struct {
	binaryPath string
	logger     logger.Interface
}

func NewFFprobeProber(binaryPath string, logger logger.Interface) *FFprobeProber {
	if binaryPath == "" {
		binaryPath = "ffprobe"
	}
	return &FFprobeProber{
		binaryPath: binaryPath,
		logger:     logger,
	}
}

// Probe inspects the source file and extracts the video geometry and
// duration. Missing files, ffprobe failures and sources with no video
// stream all surface as ErrSourceUnreadable so the pipeline can abort
// before any encoding starts.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (*media.SourceInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty source path", media.ErrSourceUnreadable)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrSourceUnreadable, err)
	}

	cmd := exec.CommandContext(ctx, p.binaryPath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path)

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			p.logger.Warnw("ffprobe failed",
				"path", path,
				"exit_code", exitError.ExitCode(),
				"stderr", string(exitError.Stderr))
		}
		return nil, fmt.Errorf("%w: ffprobe: %v", media.ErrSourceUnreadable, err)
	}

	var probed probeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("%w: parse ffprobe output: %v", media.ErrSourceUnreadable, err)
	}

	info, err := sourceInfoFromProbe(&probed)
	if err != nil {
		return nil, err
	}

	p.logger.Debugw("source probed",
		"path", path,
		"width", info.Width,
		"height", info.Height,
		"duration_seconds", info.DurationSeconds)
	return info, nil
}

// sourceInfoFromProbe picks the first video stream and resolves the
// duration, preferring the container-level value. An unparsable duration
// yields zero rather than a failure since the ladder only needs geometry.
func sourceInfoFromProbe(probed *probeOutput) (*media.SourceInfo, error) {
	var video *probeStream
	for i := range probed.Streams {
		if probed.Streams[i].CodecType == "video" {
			video = &probed.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, fmt.Errorf("%w: no video stream found", media.ErrSourceUnreadable)
	}
	if video.Height <= 0 {
		return nil, fmt.Errorf("%w: video stream has no height", media.ErrSourceUnreadable)
	}

	duration := parseDurationSeconds(probed.Format.Duration)
	if duration == 0 {
		duration = parseDurationSeconds(video.Duration)
	}

	return &media.SourceInfo{
		Width:           video.Width,
		Height:          video.Height,
		DurationSeconds: duration,
	}, nil
}

func parseDurationSeconds(raw string) int {
	if raw == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return int(math.Round(seconds))
}
