// package formatter renders dashboard view models as text, CSV, and human-readable sizes
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with 1024-based units and at most two decimals, e.g. "1.5 KB".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}

	i, v := 0, float64(n)
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}

	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatBandwidth renders a per-second rate, e.g. "2 MB/s".
func FormatBandwidth(n int64) string {
	return FormatBytes(n) + "/s"
}

// FormatProgress renders playback position as "62 / 170 min".
func FormatProgress(s models.Session) string {
	if s.IsLive {
		return fmt.Sprintf("%d min (live)", s.ProgressMinutes)
	}
	return fmt.Sprintf("%d / %d min", s.ProgressMinutes, s.DurationMinutes)
}

// TranscodeLabel summarises the playback method, e.g. "Transcode (video: transcode, audio: copy, mp4)".
func TranscodeLabel(t models.Transcoding) string {
	method := "Direct Play"
	if t.IsTranscoding {
		method = "Transcode"
	}

	var parts []string
	if t.VideoDecision != "" {
		parts = append(parts, "video: "+t.VideoDecision)
	}
	if t.AudioDecision != "" {
		parts = append(parts, "audio: "+t.AudioDecision)
	}
	if t.Container != "" {
		parts = append(parts, t.Container)
	}

	if len(parts) == 0 {
		return method
	}
	return fmt.Sprintf("%s (%s)", method, strings.Join(parts, ", "))
}

// SessionHeading is the display title of a session, including the episode label when present.
func SessionHeading(s models.Session) string {
	if s.Episode != "" {
		return fmt.Sprintf("%s: %s", s.Title, s.Episode)
	}
	return s.Title
}

// SessionsToCSV converts sessions to CSV with columns: ID, User, Title, Episode, Type, Progress, Duration, Live, Transcoding, Video, Audio, Container
func SessionsToCSV(sessions []models.Session) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "User", "Title", "Episode", "Type", "Progress", "Duration", "Live", "Transcoding", "Video", "Audio", "Container"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range sessions {
		record := []string{
			s.ID,
			s.User,
			s.Title,
			s.Episode,
			s.Type,
			strconv.Itoa(s.ProgressMinutes),
			strconv.Itoa(s.DurationMinutes),
			strconv.FormatBool(s.IsLive),
			strconv.FormatBool(s.Transcoding.IsTranscoding),
			s.Transcoding.VideoDecision,
			s.Transcoding.AudioDecision,
			s.Transcoding.Container,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SessionsToText renders one block per session.
func SessionsToText(sessions []models.Session) []byte {
	var buf bytes.Buffer

	if len(sessions) == 0 {
		buf.WriteString("No active sessions\n")
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "Now Watching (%d)\n\n", len(sessions))
	for i, s := range sessions {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, SessionHeading(s))
		fmt.Fprintf(&buf, "   User: %s\n", s.User)
		fmt.Fprintf(&buf, "   Progress: %s\n", FormatProgress(s))
		fmt.Fprintf(&buf, "   Playback: %s\n", TranscodeLabel(s.Transcoding))
	}

	return buf.Bytes()
}

// StatsToText renders library counts.
func StatsToText(stats models.LibraryStats) []byte {
	var buf bytes.Buffer

	buf.WriteString("Library\n")
	fmt.Fprintf(&buf, "  Movies:   %d\n", stats.Movies)
	fmt.Fprintf(&buf, "  TV Shows: %d\n", stats.Shows)
	fmt.Fprintf(&buf, "  Music:    %d\n", stats.Music)

	return buf.Bytes()
}

// ResourcesToText renders transcode, stream, and bandwidth usage.
func ResourcesToText(usage models.ResourceUsage) []byte {
	var buf bytes.Buffer
	s := usage.Sessions

	buf.WriteString("Session Resources\n")
	fmt.Fprintf(&buf, "  Streams:    %d\n", s.Streams)
	fmt.Fprintf(&buf, "  Transcodes: %d\n", s.Transcodes)
	fmt.Fprintf(&buf, "  Bandwidth:  %s (LAN %s, WAN %s)\n",
		FormatBandwidth(s.Bandwidth.Total), FormatBandwidth(s.Bandwidth.LAN), FormatBandwidth(s.Bandwidth.WAN))

	return buf.Bytes()
}

// ToJSON encodes v as indented JSON.
func ToJSON(v any) ([]byte, error) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport writes data to path.
func WriteExport(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
