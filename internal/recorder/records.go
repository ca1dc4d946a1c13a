package recorder

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/mvoss9000/agentlens/api/schemas"
)

// json is the codec for every artifact this package reads or writes.
// EscapeHTML is off so extracted text keeps non-ASCII characters verbatim.
var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// PlanRecord is the persisted snapshot of one decision step: what the agent
// believed and what it proposed to do. Immutable once appended to the ledger.
type PlanRecord struct {
	StepNumber   int                 `json:"step_number"`
	Timestamp    string              `json:"timestamp"`
	CurrentState *schemas.AgentBrain `json:"current_state"`
	Actions      []schemas.Action    `json:"actions"`
}

// ResultEntry is the persisted form of one action result. ExtractedContent
// holds the parsed structure when the source text carried a fenced JSON
// block, the raw string otherwise, or nil when the result had no content.
type ResultEntry struct {
	ExtractedContent interface{} `json:"extracted_content"`
	Error            *string     `json:"error"`
	Success          *bool       `json:"success"`
	IsDone           bool        `json:"is_done"`
	IncludeInMemory  bool        `json:"include_in_memory"`
}
