package analysis

import "time"

// EntryID identifier type
type EntryID string

// Result is the structured chat analysis returned by the completion service.
// Sections are optional: the model output is never validated beyond a successful
// parse, so any of them may be missing or mistyped. The zero Result encodes as {}.
type Result struct {
	Categorization    *Categorization    `json:"Categorization,omitempty"`
	Themes            []string           `json:"Themes,omitempty"`
	Patterns          *Patterns          `json:"Patterns,omitempty"`
	FrequencyAnalysis *FrequencyAnalysis `json:"FrequencyAnalysis,omitempty"`
	Insights          []string           `json:"Insights,omitempty"`
}

type Categorization struct {
	Links             []string `json:"Links"`
	Quotes            []string `json:"Quotes"`
	PersonalNotes     []string `json:"Personal-notes"`
	Recommendations   []string `json:"Recommendations"`
	TimestampMetadata []string `json:"Timestamp-metadata"`
}

type Patterns struct {
	FrequentContributors []string `json:"FrequentContributors"`
	TypicalFlow          string   `json:"TypicalFlow"`
}

type FrequencyAnalysis struct {
	TotalLinks            Count  `json:"TotalLinks"`
	TotalQuotes           Count  `json:"TotalQuotes"`
	TotalRecommendations  Count  `json:"TotalRecommendations"`
	MostActiveParticipant string `json:"MostActiveParticipant"`
}

// SavedEntry pairs the uploaded file name with its analysis. Entries are never
// edited after they are created.
type SavedEntry struct {
	ID      EntryID   `json:"id,omitempty"`
	Name    string    `json:"name"`
	Result  Result    `json:"result"`
	SavedAt time.Time `json:"saved_at"`
}

// IsEmpty reports whether the result carries no section at all.
func (r Result) IsEmpty() bool {
	return r.Categorization == nil &&
		len(r.Themes) == 0 &&
		r.Patterns == nil &&
		r.FrequencyAnalysis == nil &&
		len(r.Insights) == 0
}

// Count is a frequency counter. See decode.go for how loosely it is read.
type Count int
