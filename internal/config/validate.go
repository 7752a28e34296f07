package config

import (
	"fmt"
	"strings"

	"github.com/Brandon7CC/MODELFORGE/internal/spec"
)

// Issue captures a validation problem with a task file field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates task file validation issues. It is fatal to the
// whole run and is surfaced before any task executes.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "task file validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks a task file for completeness.
func Validate(file *spec.TaskFile) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if len(file.Tasks) == 0 {
		add("tasks", "at least one task is required")
	}

	taskNames := map[string]struct{}{}
	for i, task := range file.Tasks {
		fieldPrefix := fmt.Sprintf("tasks[%d]", i)
		name := strings.TrimSpace(task.Name)
		if name == "" {
			add(fieldPrefix+".name", "is required")
		} else if _, exists := taskNames[name]; exists {
			add("tasks.name", fmt.Sprintf("duplicate name %q", name))
		} else {
			taskNames[name] = struct{}{}
		}
		if task.RunCount < 1 {
			add(fieldPrefix+".run_count", "must be >= 1")
		}
		if strings.TrimSpace(task.Prompt) == "" {
			add(fieldPrefix+".prompt", "is required")
		}
		validateRole(task.Agent, fieldPrefix+".agent", true, add)
		validateRole(task.Postprocessor, fieldPrefix+".postprocessor", false, add)
		validateRole(task.Evaluator, fieldPrefix+".evaluator", true, add)
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validateRole(role *spec.RoleSpec, field string, required bool, add func(field, message string)) {
	if role == nil {
		if required {
			add(field, "is required")
		}
		return
	}
	if strings.TrimSpace(role.BaseModel) == "" {
		add(field+".base_model", "is required")
	}
}
