package main

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIBucket is one resolved (test kind, platform) pair.
type CLIBucket struct {
	Kind     string   `json:"kind"`
	Platform string   `json:"platform"`
	Label    string   `json:"label"`
	Touched  []string `json:"touched"`
	Retest   []string `json:"retest"`
	Compile  []string `json:"compile"`
	// Line is the text-mode rendering, for consumers that want both.
	Line string `json:"line"`
}

// CLIOperator is a JSON-friendly operator representation.
type CLIOperator struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	ComputeUnits []string `json:"compute_units,omitempty"`
}

// CLISnapshot summarizes a stored graph snapshot.
type CLISnapshot struct {
	Source       string `json:"source"`
	Database     string `json:"database"`
	LoadedAt     string `json:"loaded_at"`
	Categories   int    `json:"categories"`
	Operators    int    `json:"operators"`
	Dependencies int    `json:"dependencies"`
}
