package ffmpeg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinora/internal/domain/media"
)

func TestSourceInfoFromProbe(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantHeight   int
		wantWidth    int
		wantDuration int
		wantErr      bool
	}{
		{
			name: "video with container duration",
			raw: `{
				"format": {"duration": "7200.48"},
				"streams": [
					{"index": 0, "codec_type": "audio", "codec_name": "aac"},
					{"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080}
				]
			}`,
			wantHeight:   1080,
			wantWidth:    1920,
			wantDuration: 7200,
		},
		{
			name: "falls back to stream duration",
			raw: `{
				"format": {},
				"streams": [
					{"index": 0, "codec_type": "video", "width": 1280, "height": 720, "duration": "95.6"}
				]
			}`,
			wantHeight:   720,
			wantWidth:    1280,
			wantDuration: 96,
		},
		{
			name: "unparsable duration yields zero",
			raw: `{
				"format": {"duration": "N/A"},
				"streams": [
					{"index": 0, "codec_type": "video", "width": 640, "height": 480}
				]
			}`,
			wantHeight: 480,
			wantWidth:  640,
		},
		{
			name: "no video stream",
			raw: `{
				"format": {"duration": "120.0"},
				"streams": [{"index": 0, "codec_type": "audio", "codec_name": "mp3"}]
			}`,
			wantErr: true,
		},
		{
			name: "video stream without height",
			raw: `{
				"format": {},
				"streams": [{"index": 0, "codec_type": "video"}]
			}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var probed probeOutput
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &probed))

			info, err := sourceInfoFromProbe(&probed)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, media.ErrSourceUnreadable)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantHeight, info.Height)
			assert.Equal(t, tt.wantWidth, info.Width)
			assert.Equal(t, tt.wantDuration, info.DurationSeconds)
		})
	}
}

func TestParseDurationSeconds(t *testing.T) {
	assert.Equal(t, 0, parseDurationSeconds(""))
	assert.Equal(t, 0, parseDurationSeconds("N/A"))
	assert.Equal(t, 0, parseDurationSeconds("-5"))
	assert.Equal(t, 90, parseDurationSeconds("90.4"))
	assert.Equal(t, 91, parseDurationSeconds("90.5"))
}

func TestStderrTail(t *testing.T) {
	short := "Error opening input file"
	assert.Equal(t, short, stderrTail(short+"\n"))

	long := make([]byte, stderrTailBytes*2)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, stderrTail(string(long)), stderrTailBytes)
}
