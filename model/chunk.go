package model

// FinishStop is the terminal finish reason emitted by providers.
const FinishStop = "stop"

// StreamChunk is one incremental unit from a streaming backend.
//
// DeltaContent is incremental, not cumulative: consumers must append,
// never replace. TargetMessageID identifies which logical message the
// delta belongs to and changes across workflow iterations.
type StreamChunk struct {
	DeltaContent    string
	Role            Role
	FinishReason    string
	TargetMessageID string
	IsToolChunk     bool
	ToolExecutionID string
	ToolName        string
	ToolStatus      ToolStatus
	ToolMetadata    map[string]string
}

// IsTerminal reports whether the chunk signals end of turn: a stop
// finish reason carrying no content.
func (c StreamChunk) IsTerminal() bool {
	return c.FinishReason == FinishStop && c.DeltaContent == ""
}

// ContentChunk creates a plain assistant text delta.
func ContentChunk(delta string) StreamChunk {
	return StreamChunk{DeltaContent: delta, Role: RoleAssistant}
}

// ToolChunk creates a delta belonging to a tool execution record.
func ToolChunk(executionID, toolName, delta string) StreamChunk {
	return StreamChunk{
		DeltaContent:    delta,
		IsToolChunk:     true,
		ToolExecutionID: executionID,
		ToolName:        toolName,
	}
}

// StopChunk creates the terminal chunk for a turn.
func StopChunk() StreamChunk {
	return StreamChunk{FinishReason: FinishStop}
}
