package pipeline

import (
	"fmt"
	"strings"
)

// NotProvided marks a retry prompt slot that has no content, such as the
// previous output after a failed query or a critique after a parse failure.
const NotProvided = "not provided"

// RetryPrompt composes the agent prompt for attempts after the first. It
// restates the task, shows the rejected output and the evaluator's critique,
// and asks the model to revise.
func RetryPrompt(taskPrompt, previousOutput, critique string) string {
	if strings.TrimSpace(previousOutput) == "" {
		previousOutput = NotProvided
	}
	if strings.TrimSpace(critique) == "" {
		critique = NotProvided
	}
	var b strings.Builder
	b.WriteString(taskPrompt)
	b.WriteString("\n\nYour previous response was rejected.\n")
	b.WriteString("Previous response:\n")
	b.WriteString(previousOutput)
	b.WriteString("\n\nCritique:\n")
	b.WriteString(critique)
	b.WriteString("\n\nRevise your response to address the critique, then answer the original request again.")
	return b.String()
}

// EvalPrompt composes the evaluator prompt for a candidate submission. The
// evaluator judges the submission against its own system prompt and must
// answer with a single JSON object.
func EvalPrompt(candidate string) string {
	return fmt.Sprintf(
		"Judge the submission below against your instructions. Respond with a single JSON object "+
			"of the form {\"eval_result\": true|false, \"critique\": \"...\"} and nothing else. "+
			"Set eval_result to true only if the submission fully satisfies your instructions; "+
			"when it does not, explain why in critique.\n\nSubmission:\n%s",
		candidate,
	)
}
