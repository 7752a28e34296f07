package config

import "github.com/Brandon7CC/MODELFORGE/internal/spec"

// DefaultTemperature applies when a role omits temperature.
const DefaultTemperature = 0.8

func Normalize(file *spec.TaskFile) {
	for i := range file.Tasks {
		normalizeRole(file.Tasks[i].Agent)
		normalizeRole(file.Tasks[i].Postprocessor)
		normalizeRole(file.Tasks[i].Evaluator)
	}
}

func normalizeRole(role *spec.RoleSpec) {
	if role == nil {
		return
	}
	if role.Temperature == nil {
		temp := DefaultTemperature
		role.Temperature = &temp
	}
}
