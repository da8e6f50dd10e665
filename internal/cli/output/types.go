package output

// DocumentOutput is one split document in json and yaml output.
type DocumentOutput struct {
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}

// GraphOutput is the step graph of one query in json and yaml output.
type GraphOutput struct {
	Query  string       `json:"query" yaml:"query"`
	Output string       `json:"output" yaml:"output"`
	Levels []GraphLevel `json:"levels" yaml:"levels"`
	// Cycle is set instead of Levels when steps reference each other in a loop
	Cycle      []string `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	TotalSteps int      `json:"total_steps" yaml:"total_steps"`
	TotalEdges int      `json:"total_edges" yaml:"total_edges"`
}

// GraphLevel groups steps that depend only on lower levels.
type GraphLevel struct {
	Level int         `json:"level" yaml:"level"`
	Steps []GraphStep `json:"steps" yaml:"steps"`
}

// GraphStep is one step with its graph neighbours.
type GraphStep struct {
	Name          string   `json:"name" yaml:"name"`
	DependsOn     []string `json:"depends_on" yaml:"depends_on"`
	UsedBy        []string `json:"used_by" yaml:"used_by"`
	UsedForOutput bool     `json:"used_for_output" yaml:"used_for_output"`
}
