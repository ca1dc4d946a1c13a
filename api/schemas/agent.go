package schemas

import "encoding/json"

// AgentBrain is the agent's current-state snapshot for one decision step:
// its evaluation of the previous goal, working memory, and the next goal.
type AgentBrain struct {
	EvaluationPreviousGoal string `json:"evaluation_previous_goal,omitempty"`
	Memory                 string `json:"memory,omitempty"`
	NextGoal               string `json:"next_goal"`
}

// Action is one proposed browser action. Params is kept opaque; the host's
// executor owns its interpretation.
type Action struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params,omitempty"`
}

// AgentOutput is the model output for one step: the state snapshot plus the
// batch of actions the agent decided to take.
type AgentOutput struct {
	CurrentState *AgentBrain `json:"current_state,omitempty"`
	Actions      []Action    `json:"actions"`
}

// ActionResult is the outcome of one executed action. Optional fields use
// pointers so that "absent" and "zero" stay distinguishable on the wire.
type ActionResult struct {
	ExtractedContent *string `json:"extracted_content,omitempty"`
	Error            *string `json:"error,omitempty"`
	Success          *bool   `json:"success,omitempty"`
	IsDone           bool    `json:"is_done"`
	IncludeInMemory  bool    `json:"include_in_memory"`
}

// AgentHistory is the host's completion payload. Entries are kept as raw
// JSON; this plugin never interprets them beyond counting.
type AgentHistory struct {
	Entries []json.RawMessage `json:"history"`
}
