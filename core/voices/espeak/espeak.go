// Package espeak speaks through the espeak-ng command line synthesizer, the
// platform voice on Linux desktops.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/voices"
)

const (
	defaultBinary = "espeak-ng"

	// espeak-ng defaults, the pacing multiplies these
	baseWordsPerMinute = 175
	basePitch          = 50
	baseAmplitude      = 100
)

type Synthesizer struct {
	binary string

	mu      sync.Mutex
	current context.CancelFunc
	runs    uint64
}

type Option func(*Synthesizer)

func WithBinary(binary string) Option {
	return func(s *Synthesizer) {
		if binary != "" {
			s.binary = binary
		}
	}
}

func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{binary: defaultBinary}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether the espeak-ng binary can be found.
func (s *Synthesizer) Available() bool {
	_, err := exec.LookPath(s.binary)
	return err == nil
}

func (s *Synthesizer) Voices(ctx context.Context) ([]voices.Voice, error) {
	out, err := exec.CommandContext(ctx, s.binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list espeak voices: %w", err)
	}
	return parseVoices(out), nil
}

// OnVoicesChanged is a no-op, the espeak voice list is static.
func (s *Synthesizer) OnVoicesChanged(func()) {}

func (s *Synthesizer) Speak(ctx context.Context, utterance voices.Utterance) error {
	ctx, done := s.track(ctx)
	defer done()
	if err := exec.CommandContext(ctx, s.binary, args(utterance)...).Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("espeak failed: %w", err)
	}
	return nil
}

// Render synthesizes the utterance into a WAV clip.
func (s *Synthesizer) Render(ctx context.Context, utterance voices.Utterance) (audio.Clip, error) {
	ctx, done := s.track(ctx)
	defer done()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary, append([]string{"--stdout"}, args(utterance)...)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return audio.Clip{}, ctx.Err()
		}
		return audio.Clip{}, fmt.Errorf("espeak failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return audio.Clip{}, errors.New("espeak produced no audio")
	}
	return audio.Clip{Data: stdout.Bytes(), ContentType: "audio/wav"}, nil
}

// Cancel kills the utterance in progress.
func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current()
		s.current = nil
	}
}

func (s *Synthesizer) track(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.runs++
	run := s.runs
	s.current = cancel
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if s.runs == run {
			s.current = nil
		}
		s.mu.Unlock()
		cancel()
	}
}

func args(utterance voices.Utterance) []string {
	voice := utterance.Language
	if utterance.Voice != nil && utterance.Voice.ID != "" {
		voice = utterance.Voice.ID
	}
	pacing := utterance.Pacing
	if pacing == (voices.Pacing{}) {
		pacing = voices.PacingFor(utterance.Language)
	}

	args := []string{
		"-s", strconv.Itoa(scale(baseWordsPerMinute, pacing.Rate, 80, 450)),
		"-p", strconv.Itoa(scale(basePitch, pacing.Pitch, 0, 99)),
		"-a", strconv.Itoa(scale(baseAmplitude, pacing.Volume, 0, 200)),
	}
	if voice != "" {
		args = append(args, "-v", strings.ToLower(voice))
	}
	return append(args, "--", utterance.Text)
}

func scale(base int, factor float64, lo, hi int) int {
	if factor <= 0 {
		factor = 1
	}
	v := int(math.Round(float64(base) * factor))
	return min(max(v, lo), hi)
}

// parseVoices reads the table printed by "espeak-ng --voices":
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US     (en 2)
func parseVoices(out []byte) []voices.Voice {
	var result []voices.Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 {
			continue
		}
		language := fields[1]
		result = append(result, voices.Voice{
			ID:       language,
			Name:     "espeak " + strings.ReplaceAll(fields[3], "_", " "),
			Language: language,
			Default:  language == "en" || language == "en-us",
		})
	}
	return result
}
