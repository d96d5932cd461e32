package openai

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

func TestAccentFallback(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips fillers", "So um I was like thinking uh about it", "So I was thinking about it"},
		{"case insensitive", "Um yes UH sure", "yes sure"},
		{"no fillers unchanged", "This is a clean sentence", "This is a clean sentence"},
		{"all filler keeps original", "um uh like", "um uh like"},
		{"filler inside word untouched", "umbrella column", "umbrella column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := accentFallback(tt.input); got != tt.want {
				t.Errorf("accentFallback(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLanguageFallback(t *testing.T) {
	got := languageFallback("This is a test that demonstrates quality")
	want := "This exemplifies a test that showcases quality"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExecutiveFallback(t *testing.T) {
	got := executiveFallback("This is a sample of my work")
	want := "This represents a professional communication of my work"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteWithoutKeyUsesFallbacks(t *testing.T) {
	coach := NewCoach(CoachConfig{}, zap.NewNop())

	accent, language, executive := coach.Rewrite(context.Background(), "This is um a sample")

	for name, result := range map[string]struct {
		text       string
		isFallback bool
	}{
		"accent":    {accent.Text, accent.IsFallback()},
		"language":  {language.Text, language.IsFallback()},
		"executive": {executive.Text, executive.IsFallback()},
	} {
		if !result.isFallback {
			t.Errorf("%s: expected a fallback result without an api key", name)
		}
		if result.text == "" {
			t.Errorf("%s: expected non-empty rewrite", name)
		}
	}
	if accent.Text != "This is a sample" {
		t.Errorf("accent = %q, want filler words removed", accent.Text)
	}
}

func TestTranscribeWithoutKey(t *testing.T) {
	tr := NewTranscriber(TranscriberConfig{}, zap.NewNop())
	if _, err := tr.TranscribeAudio(context.Background(), []byte{1}, repositories.AudioConfig{}); err == nil {
		t.Fatal("expected error without an api key")
	}
}

func TestSynthesizeSpeechValidation(t *testing.T) {
	synth := NewSynthesizer(SynthesizerConfig{APIKey: "sk-test"}, zap.NewNop())

	if _, err := synth.SynthesizeSpeech(context.Background(), "  ", repositories.SpeechOptions{}); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := synth.SynthesizeSpeech(context.Background(), "hi", repositories.SpeechOptions{Speed: 9}); err == nil {
		t.Error("expected error for out-of-range speed")
	}
}
