package models

// Durability says whether a client-held record is known to the server.
type Durability string

const (
	// Persisted records match a server round-trip.
	Persisted Durability = "persisted"
	// LocalOnly records were produced by a fallback mutation and were never saved.
	LocalOnly Durability = "local-only"
)

// ProjectRecord is a client project tagged with its durability.
type ProjectRecord struct {
	Project    ClientProject `json:"project" yaml:"project"`
	Durability Durability    `json:"durability" yaml:"durability"`
}

// GoalRecord is a goal tagged with its durability.
type GoalRecord struct {
	Goal       Goal       `json:"goal" yaml:"goal"`
	Durability Durability `json:"durability" yaml:"durability"`
}
