package model

// Occurrence counts how often one store path appears in a tree.
type Occurrence struct {
	Path      StorePath `json:"path"`
	Count     int       `json:"count"`     // Total occurrences
	Collapsed int       `json:"collapsed"` // Occurrences printed as [...]
	First     string    `json:"first"`     // Path of the first occurrence, dot-separated
}

// Summary contains the figures derived from one parsed tree.
type Summary struct {
	Root        StorePath    `json:"root"`
	Nodes       int          `json:"nodes"`
	Distinct    int          `json:"distinct"`
	Collapsed   int          `json:"collapsed"`
	MaxDepth    int          `json:"maxDepth"`
	Repeated    []Occurrence `json:"repeated"` // Store paths seen more than once, most frequent first
	Diagnostics []string     `json:"diagnostics"`
}
