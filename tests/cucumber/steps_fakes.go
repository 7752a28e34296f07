package cucumber

import (
	"context"
	"fmt"

	"github.com/Brandon7CC/MODELFORGE/internal/model"
	"github.com/Brandon7CC/MODELFORGE/internal/runner"
)

const (
	agentBaseModel = "llama2"
	evalBaseModel  = "mistral"
)

// factory routes handles to scripted fakes by base model.
func (s *featureState) factory(handle model.Handle) (model.Client, error) {
	switch handle.BaseModel {
	case agentBaseModel:
		return &scriptedClient{state: s, agent: true}, nil
	case evalBaseModel:
		return &scriptedClient{state: s, agent: false}, nil
	default:
		return nil, fmt.Errorf("unexpected base model %q", handle.BaseModel)
	}
}

// scriptedClient replays canned replies and records the create/dispose
// lifecycle of every ephemeral name it sees.
type scriptedClient struct {
	state *featureState
	agent bool
}

func (c *scriptedClient) Create(_ context.Context, handle model.Handle) error {
	c.state.created[handle.EphemeralName] = true
	return nil
}

func (c *scriptedClient) Query(_ context.Context, handle model.Handle, prompt string) (string, error) {
	if c.agent {
		c.state.agentPrompts = append(c.state.agentPrompts, prompt)
		return nextReply(&c.state.agentReplies), nil
	}
	return nextReply(&c.state.evalReplies), nil
}

func (c *scriptedClient) Dispose(_ context.Context, handle model.Handle) error {
	c.state.disposed[handle.EphemeralName] = true
	return nil
}

// nextReply pops the front of the script; the last reply repeats forever.
func nextReply(script *[]string) string {
	if len(*script) == 0 {
		return ""
	}
	reply := (*script)[0]
	if len(*script) > 1 {
		*script = (*script)[1:]
	}
	return reply
}

// countingObserver tallies repetition outcomes.
type countingObserver struct {
	runner.NopRunObserver
	state *featureState
}

func (o countingObserver) OnRepetitionEnd(task string, repetition int, accepted bool) {
	if accepted {
		o.state.accepted++
		return
	}
	o.state.rejected++
}

func acceptVerdict() string {
	return `{"eval_result": true, "critique": ""}`
}

func rejectVerdict(critique string) string {
	return fmt.Sprintf(`{"eval_result": false, "critique": %q}`, critique)
}
