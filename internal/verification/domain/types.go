// Package domain contains the types and client for title verification
// against the remote scoring engine.
package domain

// TitlePair is one verification submission. The english title is required;
// the regional title is optional and passed through unmodified.
type TitlePair struct {
	EnglishTitle  string `json:"title"`
	RegionalTitle string `json:"hindi_title"`
}

// Stages holds the per-stage detail strings in the engine's fixed execution
// order: rule compliance (A), lexical/phonetic (B), semantic (C).
type Stages struct {
	RuleCompliance string `json:"A"`
	Lexical        string `json:"B"`
	Semantic       string `json:"C"`
}

// Match is one close existing title, with its similarity score and the stage
// that produced it.
type Match struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Stage string  `json:"stage"`
}

// Verdict is the structured outcome of one verification call. Approved is
// authoritative: the approval threshold is enforced server-side and the
// client never recomputes it from Probability.
type Verdict struct {
	Approved         bool     `json:"approved"`
	Probability      float64  `json:"probability"`
	ConfidenceBucket string   `json:"confidence_bucket"`
	Reason           string   `json:"reason"`
	Stages           Stages   `json:"stages"`
	SMax             float64  `json:"s_max"`
	TopMatches       []Match  `json:"top_k_matches"`
	Tags             []string `json:"tags,omitempty"`
	Suggestions      []string `json:"suggestions,omitempty"`

	// Audit lineage metadata, all optional.
	InferenceSeconds float64 `json:"inference_time_seconds,omitempty"`
	ModelVersion     string  `json:"model_version,omitempty"`
	RulesetVersion   string  `json:"ruleset_version,omitempty"`
	IndexTimestamp   string  `json:"index_timestamp,omitempty"`

	// Title is the exact english title this verdict scored, recorded
	// client-side so a later registration hashes precisely the string that
	// was verified.
	Title string `json:"title,omitempty"`
}
