package classifier

import (
	"testing"

	"github.com/selivandex/stockpulse/pkg/models"
)

func TestParsePrediction(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLabel models.SentimentLabel
		wantScore float64
		wantErr   bool
	}{
		{
			name:      "nested response shape",
			body:      `[[{"label":"positive","score":0.93},{"label":"negative","score":0.05}]]`,
			wantLabel: models.SentimentPositive,
			wantScore: 0.93,
		},
		{
			name:      "flat response shape",
			body:      `[{"label":"NEGATIVE","score":0.81}]`,
			wantLabel: models.SentimentNegative,
			wantScore: 0.81,
		},
		{
			name:      "unknown label maps to neutral",
			body:      `[{"label":"mixed","score":0.6}]`,
			wantLabel: models.SentimentNeutral,
			wantScore: 0.6,
		},
		{
			name:    "empty array is an error",
			body:    `[]`,
			wantErr: true,
		},
		{
			name:    "garbage is an error",
			body:    `{"error":"model overloaded"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, score, err := parsePrediction([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if label != tt.wantLabel {
				t.Errorf("label = %s, want %s", label, tt.wantLabel)
			}
			if score != tt.wantScore {
				t.Errorf("score = %f, want %f", score, tt.wantScore)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want models.SentimentLabel
	}{
		{"POSITIVE", models.SentimentPositive},
		{"positive", models.SentimentPositive},
		{"Negative", models.SentimentNegative},
		{"NEUTRAL", models.SentimentNeutral},
		{"LABEL_1", models.SentimentNeutral},
		{"", models.SentimentNeutral},
	}

	for _, tt := range tests {
		if got := normalizeLabel(tt.in); got != tt.want {
			t.Errorf("normalizeLabel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
