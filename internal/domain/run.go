package domain

// Outcome enumerates how a day run terminated.
type Outcome string

const (
	OutcomeEmpty     Outcome = "empty"
	OutcomePersisted Outcome = "persisted"
)

// DayResult summarises one orchestrated day.
type DayResult struct {
	Day          Day
	Outcome      Outcome
	Total        int
	Collected    int
	NotCollected int
	New          []string
	Path         string
}
