package store

import "time"

// Operator is a stored operator row.
type Operator struct {
	ID           int64
	Name         string
	Category     string
	LocalName    string
	ComputeUnits []string
}

// Dependency is a stored forward edge: From requires To.
type Dependency struct {
	ID   int64
	From string
	To   string
}

// Snapshot describes where a stored graph came from.
type Snapshot struct {
	Source   string
	LoadedAt time.Time
}
