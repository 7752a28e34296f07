package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/Brandon7CC/MODELFORGE/internal/spec"
)

func validTaskFile() spec.TaskFile {
	temp := 0.5
	return spec.TaskFile{
		Tasks: []spec.TaskEntry{
			{
				Name:     "fibonacci",
				RunCount: 1,
				Prompt:   "Write a C function returning the nth Fibonacci number.",
				Agent: &spec.RoleSpec{
					BaseModel:   "phi",
					Temperature: &temp,
				},
				Evaluator: &spec.RoleSpec{
					BaseModel:   "mistral",
					Temperature: &temp,
				},
			},
		},
	}
}

// TestValidateAcceptsCompleteTask verifies a complete task passes validation.
func TestValidateAcceptsCompleteTask(t *testing.T) {
	file := validTaskFile()
	if err := Validate(&file); err != nil {
		t.Fatalf("expected valid task file, got %v", err)
	}
}

// TestValidateRequiresTasks verifies an empty task list is rejected.
func TestValidateRequiresTasks(t *testing.T) {
	file := spec.TaskFile{}
	err := Validate(&file)
	if err == nil {
		t.Fatalf("expected validation error for empty task list")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

// TestValidateRequiredFields verifies missing fields are each reported.
func TestValidateRequiredFields(t *testing.T) {
	file := validTaskFile()
	file.Tasks[0].Name = ""
	file.Tasks[0].Prompt = ""
	file.Tasks[0].Agent = nil
	file.Tasks[0].Evaluator = nil

	err := Validate(&file)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	for _, field := range []string{"tasks[0].name", "tasks[0].prompt", "tasks[0].agent", "tasks[0].evaluator"} {
		if !hasIssue(verr, field) {
			t.Errorf("expected issue for %s, got %v", field, verr.Issues)
		}
	}
}

// TestValidateRunCount verifies run_count below one is rejected.
func TestValidateRunCount(t *testing.T) {
	file := validTaskFile()
	file.Tasks[0].RunCount = 0
	err := Validate(&file)
	if err == nil {
		t.Fatalf("expected validation error for run_count")
	}
	if !strings.Contains(err.Error(), "run_count") {
		t.Fatalf("expected run_count issue, got %v", err)
	}
}

// TestValidateDuplicateNames verifies duplicate task names are rejected.
func TestValidateDuplicateNames(t *testing.T) {
	file := validTaskFile()
	file.Tasks = append(file.Tasks, file.Tasks[0])
	err := Validate(&file)
	if err == nil {
		t.Fatalf("expected validation error for duplicate names")
	}
	if !strings.Contains(err.Error(), "duplicate name") {
		t.Fatalf("expected duplicate name issue, got %v", err)
	}
}

// TestValidateOptionalPostprocessor verifies a missing postprocessor is allowed
// but a present one still needs a base model.
func TestValidateOptionalPostprocessor(t *testing.T) {
	file := validTaskFile()
	file.Tasks[0].Postprocessor = &spec.RoleSpec{}
	err := Validate(&file)
	if err == nil {
		t.Fatalf("expected validation error for empty postprocessor base_model")
	}
	if !strings.Contains(err.Error(), "postprocessor.base_model") {
		t.Fatalf("expected postprocessor.base_model issue, got %v", err)
	}
}

func hasIssue(err *ValidationError, field string) bool {
	for _, issue := range err.Issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}
