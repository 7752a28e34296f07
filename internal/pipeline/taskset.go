package pipeline

import "github.com/Brandon7CC/MODELFORGE/internal/spec"

// TaskSet holds the tasks of one task file in file order.
type TaskSet struct {
	Tasks []*Task
}

// BuildTaskSet converts parsed task entries into executable tasks. The file
// must already be normalized and validated.
func BuildTaskSet(file spec.TaskFile) *TaskSet {
	tasks := make([]*Task, 0, len(file.Tasks))
	for _, entry := range file.Tasks {
		task := &Task{
			Name:      entry.Name,
			Prompt:    entry.Prompt,
			RunCount:  entry.RunCount,
			Agent:     roleFromSpec(entry.Agent),
			Evaluator: roleFromSpec(entry.Evaluator),
			State:     StatePending,
		}
		if entry.Postprocessor != nil {
			role := roleFromSpec(entry.Postprocessor)
			task.Postprocessor = &role
		}
		tasks = append(tasks, task)
	}
	return &TaskSet{Tasks: tasks}
}

func roleFromSpec(role *spec.RoleSpec) Role {
	if role == nil {
		return Role{}
	}
	out := Role{BaseModel: role.BaseModel, SystemPrompt: role.SystemPrompt}
	if role.Temperature != nil {
		out.Temperature = *role.Temperature
	}
	return out
}
