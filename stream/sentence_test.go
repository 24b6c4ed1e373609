package stream

import (
	"reflect"
	"testing"
)

func TestSegmenterSplitsAcrossChunks(t *testing.T) {
	seg := NewSentenceSegmenter()

	var got []string
	for _, delta := range []string{"Hel", "lo. Wor", "ld!"} {
		got = append(got, seg.Feed(delta)...)
	}

	want := []string{"Hello.", "World!"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegmenterTerminatorRules(t *testing.T) {
	tests := []struct {
		name   string
		deltas []string
		want   []string
	}{
		{
			name:   "colon before whitespace ends a sentence",
			deltas: []string{"Here is the plan: first we pack."},
			want:   []string{"Here is the plan:", "first we pack."},
		},
		{
			name:   "question and exclamation marks",
			deltas: []string{"Ready? Go! Now"},
			want:   []string{"Ready?", "Go!"},
		},
		{
			name:   "terminator not followed by whitespace is held",
			deltas: []string{"v1.2 shipped"},
			want:   nil,
		},
		{
			// Decimal points followed by whitespace still split; the
			// heuristic reproduces the source behavior unchanged.
			name:   "decimal followed by space splits",
			deltas: []string{"Pi is 3. 14 roughly"},
			want:   []string{"Pi is 3."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := NewSentenceSegmenter()
			var got []string
			for _, d := range tt.deltas {
				got = append(got, seg.Feed(d)...)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSegmenterFlushReturnsRemainder(t *testing.T) {
	seg := NewSentenceSegmenter()
	seg.Feed("Done. And one more thing")

	if got := seg.Flush(); got != "And one more thing" {
		t.Errorf("expected remainder, got %q", got)
	}
	if got := seg.Flush(); got != "" {
		t.Errorf("expected empty after flush, got %q", got)
	}
}

func TestSegmenterEmptyDelta(t *testing.T) {
	seg := NewSentenceSegmenter()
	if got := seg.Feed(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
