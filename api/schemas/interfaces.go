package schemas

import "context"

// StepCallback is invoked by the host once per decision step, after the host
// has already advanced its own step counter.
type StepCallback func(ctx context.Context, state *BrowserState, output *AgentOutput, stepNumber int) error

// DoneCallback is invoked by the host once when the run completes.
type DoneCallback func(ctx context.Context, history *AgentHistory) error

// BrowserSession is the narrow view of the host's browser collaborator that
// this plugin consumes: state retrieval and on-demand screenshot capture.
type BrowserSession interface {
	GetState(ctx context.Context) (*BrowserState, error)
	CaptureScreenshot(ctx context.Context, fullPage bool) (string, error)
}

// ActionExecutor executes one batch of actions. The host exposes its
// execution method through this interface so observers can wrap it without
// touching the host's type.
type ActionExecutor interface {
	ExecuteActions(ctx context.Context, actions []Action) ([]ActionResult, error)
}

// Host is the attachment surface an agent exposes to observer plugins:
// a session accessor (sibling state the wrapped executor reaches at call
// time), a replaceable executor slot, and the two callback slots.
type Host interface {
	Session() BrowserSession
	Executor() ActionExecutor
	SetExecutor(exec ActionExecutor)
	SetStepCallback(cb StepCallback)
	SetDoneCallback(cb DoneCallback)
}
