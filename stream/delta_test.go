package stream

import "testing"

func TestParseDeltaControlEvents(t *testing.T) {
	t.Run("user input required", func(t *testing.T) {
		d := ParseDelta(`[SAM_EVENT:user_input_required]{"toolCallId":"x","prompt":"p"}`)
		if d.Err != nil {
			t.Fatalf("unexpected error: %v", d.Err)
		}
		if d.Control == nil {
			t.Fatal("expected control event")
		}
		if d.Control.Type != EventUserInputRequired {
			t.Errorf("expected user_input_required, got %q", d.Control.Type)
		}
		if d.Control.UserInput == nil || d.Control.UserInput.ToolCallID != "x" {
			t.Errorf("expected toolCallId x, got %+v", d.Control.UserInput)
		}
	})

	t.Run("image display", func(t *testing.T) {
		d := ParseDelta(`[SAM_EVENT:image_display]{"imagePaths":["/tmp/a.png"],"prompt":"a cat"}`)
		if d.Err != nil {
			t.Fatalf("unexpected error: %v", d.Err)
		}
		if d.Control == nil || d.Control.Image == nil {
			t.Fatal("expected image event")
		}
		if len(d.Control.Image.ImagePaths) != 1 || d.Control.Image.ImagePaths[0] != "/tmp/a.png" {
			t.Errorf("unexpected image paths: %v", d.Control.Image.ImagePaths)
		}
	})

	t.Run("malformed payload reports error", func(t *testing.T) {
		d := ParseDelta(`[SAM_EVENT:user_input_required]{not json`)
		if d.Err == nil {
			t.Error("expected parse error")
		}
		if d.Control != nil {
			t.Error("malformed event must not be dispatched")
		}
	})

	t.Run("plain text is content", func(t *testing.T) {
		d := ParseDelta("hello there")
		if d.Control != nil || d.Err != nil {
			t.Fatalf("expected content delta, got %+v", d)
		}
		if d.Text != "hello there" {
			t.Errorf("expected text preserved, got %q", d.Text)
		}
	})
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Status
	}{
		{"thinking", "SUCCESS: Thinking about the problem", StatusThinking},
		{"tool with name", "SUCCESS: Using web_search...", StatusProcessingTool("web_search")},
		{"tool without name", "SUCCESS: done", StatusProcessingTool("tool")},
		{"plain content", "The answer is 42", StatusGenerating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.text); got != tt.want {
				t.Errorf("classifyStatus(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
