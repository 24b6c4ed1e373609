// Delta grammar: each chunk's text is parsed once into a tagged
// variant before the consumption loop interprets it, replacing
// cascading substring checks.

package stream

import (
	"regexp"
	"strings"
)

// Status is the informational processing state surfaced to observers
// while a turn streams.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusThinking   Status = "thinking"
	StatusGenerating Status = "generating"
)

// StatusProcessingTool builds the status shown while a named tool is
// executing.
func StatusProcessingTool(name string) Status {
	return Status("processing tool " + name)
}

// Delta is the parsed form of one chunk's text. A non-nil Control
// means the delta was consumed entirely by an out-of-band event and
// contributes no content. Err is set when a recognized control tag
// carried an unparseable payload.
type Delta struct {
	Control *ControlEvent
	Status  Status
	Text    string
	Err     error
}

// usingToolPattern extracts the tool name from progress lines of the
// form "Using <name>...".
var usingToolPattern = regexp.MustCompile(`Using ([\w-]+)`)

// ParseDelta classifies one chunk's text into the {Control, Status,
// Content} grammar.
func ParseDelta(text string) Delta {
	if event, tagged, err := parseControlEvent(text); tagged {
		return Delta{Control: event, Status: StatusGenerating, Err: err}
	}
	return Delta{Status: classifyStatus(text), Text: text}
}

// classifyStatus derives the processing status side channel from a
// delta's text.
func classifyStatus(text string) Status {
	if strings.Contains(text, "SUCCESS:") {
		if strings.Contains(strings.ToLower(text), "thinking") {
			return StatusThinking
		}
		return StatusProcessingTool(extractToolName(text))
	}
	return StatusGenerating
}

// extractToolName pulls the tool name from a "Using <name>..."
// substring, defaulting to "tool".
func extractToolName(text string) string {
	if m := usingToolPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return "tool"
}
