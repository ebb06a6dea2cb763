package domain

// QueryResult is the terminal outcome of a successful query pipeline run.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Query   string   `json:"query,omitempty"`
}
