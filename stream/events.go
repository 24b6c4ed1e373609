// Control events: out-of-band instructions embedded in stream text.
// Their originating text is consumed entirely and never rendered.

package stream

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// controlEventPattern matches the bracket-tagged wire format
// [SAM_EVENT:<type>]<json> where the payload is a single-line JSON
// object specific to the event type.
var controlEventPattern = regexp.MustCompile(`\[SAM_EVENT:(\w+)\](.+)`)

// ControlEventType enumerates the recognized event tags.
type ControlEventType string

const (
	EventUserInputRequired ControlEventType = "user_input_required"
	EventImageDisplay      ControlEventType = "image_display"
)

// UserInputRequest asks the human for input during a tool-driven
// collaboration pause.
type UserInputRequest struct {
	ToolCallID string `json:"toolCallId"`
	Prompt     string `json:"prompt"`
	Context    string `json:"context,omitempty"`
}

// ImageDisplay asks the client to surface generated images.
type ImageDisplay struct {
	ImagePaths []string `json:"imagePaths"`
	Prompt     string `json:"prompt"`
}

// ControlEvent is one parsed out-of-band instruction. Exactly one of
// UserInput or Image is non-nil for the recognized types; unknown
// types carry only Type and Raw.
type ControlEvent struct {
	Type      ControlEventType
	UserInput *UserInputRequest
	Image     *ImageDisplay
	Raw       string
}

// parseControlEvent scans delta text for the bracket-tagged pattern.
// The second return reports whether a tag was recognized at all; a
// recognized tag with an unparseable payload returns an error and the
// whole delta is still consumed.
func parseControlEvent(delta string) (*ControlEvent, bool, error) {
	m := controlEventPattern.FindStringSubmatch(delta)
	if m == nil {
		return nil, false, nil
	}

	eventType := ControlEventType(m[1])
	payload := m[2]
	event := &ControlEvent{Type: eventType, Raw: payload}

	switch eventType {
	case EventUserInputRequired:
		var req UserInputRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return nil, true, fmt.Errorf("malformed %s payload: %w", eventType, err)
		}
		event.UserInput = &req
	case EventImageDisplay:
		var img ImageDisplay
		if err := json.Unmarshal([]byte(payload), &img); err != nil {
			return nil, true, fmt.Errorf("malformed %s payload: %w", eventType, err)
		}
		event.Image = &img
	default:
		// Unknown tags are still consumed so they never render, but
		// the payload is passed through raw.
		var probe map[string]any
		if err := json.Unmarshal([]byte(payload), &probe); err != nil {
			return nil, true, fmt.Errorf("malformed %s payload: %w", eventType, err)
		}
	}

	return event, true, nil
}
