package spec

type TaskFile struct {
	Tasks []TaskEntry `yaml:"tasks"`
}

type TaskEntry struct {
	Name          string    `yaml:"name"`
	RunCount      int       `yaml:"run_count"`
	Prompt        string    `yaml:"prompt"`
	Agent         *RoleSpec `yaml:"agent"`
	Postprocessor *RoleSpec `yaml:"postprocessor"`
	Evaluator     *RoleSpec `yaml:"evaluator"`
}

type RoleSpec struct {
	BaseModel    string   `yaml:"base_model"`
	Temperature  *float64 `yaml:"temperature"`
	SystemPrompt string   `yaml:"system_prompt"`
}
