package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg wraps the audio preprocessing step: uploaded clips arrive in
// arbitrary container formats and are converted to 16 kHz mono WAV before
// speech-to-text sees them.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
}

// NewFFmpeg creates a new FFmpeg instance
func NewFFmpeg(ffmpegPath, ffprobePath, tempDir string) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
	}
}

// MediaInfo holds the probe results the adapter cares about
type MediaInfo struct {
	Duration float64
	HasAudio bool
	Format   string
}

// Probe extracts container and stream information from a media file
func (f *FFmpeg) Probe(ctx context.Context, inputPath string) (*MediaInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	}

	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	var metadata struct {
		Format struct {
			FormatName string `json:"format_name"`
			Duration   string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType string `json:"codec_type"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(stdout.Bytes(), &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{Format: metadata.Format.FormatName}
	if metadata.Format.Duration != "" {
		info.Duration, _ = strconv.ParseFloat(metadata.Format.Duration, 64)
	}
	for _, stream := range metadata.Streams {
		if stream.CodecType == "audio" {
			info.HasAudio = true
			break
		}
	}

	return info, nil
}

// ExtractAudio converts the input media to 16 kHz mono WAV and returns the
// staged file path. The caller owns cleanup of the returned file.
func (f *FFmpeg) ExtractAudio(ctx context.Context, inputPath string) (string, error) {
	info, err := f.Probe(ctx, inputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
	}
	if !info.HasAudio {
		return "", fmt.Errorf("%w: no audio stream", ErrUnsupportedFormat)
	}

	if f.tempDir != "" {
		if err := os.MkdirAll(f.tempDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create temp directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(f.tempDir, "audio-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	outputPath := tmp.Name()
	tmp.Close()

	args := []string{
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg audio extraction failed: %w, stderr: %s", err, stderr.String())
	}

	stat, err := os.Stat(outputPath)
	if err != nil || stat.Size() == 0 {
		os.Remove(outputPath)
		return "", fmt.Errorf("%w: extracted audio is empty", ErrUnsupportedFormat)
	}

	return outputPath, nil
}

// Cleanup removes a staged temp file, ignoring files outside the temp dir
func (f *FFmpeg) Cleanup(path string) {
	if path == "" {
		return
	}
	if f.tempDir != "" && !strings.HasPrefix(path, f.tempDir) && !strings.HasPrefix(path, os.TempDir()) {
		return
	}
	os.Remove(path)
}
