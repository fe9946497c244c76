package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cineshazam/cineshazam/pkg/models"
)

var (
	srtTimecode = regexp.MustCompile(
		`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)
	htmlTag = regexp.MustCompile(`<[^>]+>`)
)

// ParseSRT parses SubRip subtitle data into time-ordered lines for movieID.
// Malformed cues are skipped rather than failing the whole file; subtitle
// archives in the wild are rarely pristine.
func ParseSRT(movieID string, data []byte) ([]models.SubtitleLine, error) {
	// Strip UTF-8 BOM some archives carry
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var lines []models.SubtitleLine

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		current *models.SubtitleLine
		textBuf []string
		sawCue  bool
	)

	flush := func() {
		if current == nil {
			return
		}
		text := cleanCueText(strings.Join(textBuf, " "))
		if text != "" {
			current.Text = text
			lines = append(lines, *current)
		}
		current = nil
		textBuf = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			flush()
			continue
		}

		if m := srtTimecode.FindStringSubmatch(line); m != nil {
			flush()
			sawCue = true
			current = &models.SubtitleLine{
				MovieID:   movieID,
				StartTime: timecode(m[1], m[2], m[3], m[4]),
				EndTime:   timecode(m[5], m[6], m[7], m[8]),
			}
			continue
		}

		// Sequence numbers between cues are noise; text lines belong to
		// the open cue
		if current != nil {
			textBuf = append(textBuf, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan subtitle data: %w", err)
	}
	if !sawCue {
		return nil, fmt.Errorf("no subtitle cues found")
	}

	return lines, nil
}

func timecode(h, m, s, ms string) time.Duration {
	return time.Duration(atoi(h))*time.Hour +
		time.Duration(atoi(m))*time.Minute +
		time.Duration(atoi(s))*time.Second +
		time.Duration(atoi(ms))*time.Millisecond
}

func atoi(s string) int64 {
	var n int64
	for _, r := range s {
		n = n*10 + int64(r-'0')
	}
	return n
}

// cleanCueText strips markup and collapses whitespace
func cleanCueText(text string) string {
	text = htmlTag.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "{\\an8}", "")
	return strings.Join(strings.Fields(text), " ")
}
