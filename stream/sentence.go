// Sentence segmentation for speech: content deltas feed a rolling
// buffer, and complete sentences are handed to the speech queue as
// soon as their terminator arrives.

package stream

import "strings"

// sentenceTerminators are the characters that may end a sentence.
const sentenceTerminators = ".!?:"

// SentenceSegmenter accumulates content deltas and emits sentence
// units. A terminator is accepted only when it is the last character
// of the buffer or is immediately followed by whitespace; decimal
// numbers and abbreviations are not special-cased beyond that.
type SentenceSegmenter struct {
	buf string
}

// NewSentenceSegmenter creates an empty segmenter.
func NewSentenceSegmenter() *SentenceSegmenter {
	return &SentenceSegmenter{}
}

// Feed appends delta text and returns any complete sentences, trimmed
// of surrounding whitespace. The remainder is retained for the next
// call.
func (s *SentenceSegmenter) Feed(delta string) []string {
	if delta == "" {
		return nil
	}
	s.buf += delta

	var sentences []string
	for {
		cut := s.nextBoundary()
		if cut < 0 {
			break
		}
		sentence := strings.TrimSpace(s.buf[:cut+1])
		s.buf = s.buf[cut+1:]
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	return sentences
}

// Flush returns the trimmed remainder, if any, and resets the buffer.
func (s *SentenceSegmenter) Flush() string {
	remainder := strings.TrimSpace(s.buf)
	s.buf = ""
	return remainder
}

// Reset discards all buffered text.
func (s *SentenceSegmenter) Reset() {
	s.buf = ""
}

// nextBoundary returns the index of the first accepted terminator, or
// -1 when the buffer holds no complete sentence.
func (s *SentenceSegmenter) nextBoundary() int {
	for i := 0; i < len(s.buf); i++ {
		if !strings.ContainsRune(sentenceTerminators, rune(s.buf[i])) {
			continue
		}
		if i == len(s.buf)-1 {
			return i
		}
		next := s.buf[i+1]
		if next == ' ' || next == '\t' || next == '\n' || next == '\r' {
			return i
		}
	}
	return -1
}
