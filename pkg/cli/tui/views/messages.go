package views

// StateChangedMsg is emitted when a state machine reported a change
type StateChangedMsg struct{}

// StartedMsg is emitted when the initial load of a view finished
type StartedMsg struct {
	Err error
}

// SubmitDoneMsg is emitted when a scrape job submission completes
type SubmitDoneMsg struct {
	JobID string
	Err   error
}

// RefreshDoneMsg is emitted when a manual refresh completes. Ran is false
// when the refresh was skipped because another one was running.
type RefreshDoneMsg struct {
	Ran bool
	Err error
}

// JobLoadedMsg is emitted when the opened job and its results were reloaded
type JobLoadedMsg struct {
	JobID string
	Err   error
}

// SearchDoneMsg is emitted when a search completes
type SearchDoneMsg struct {
	Query string
	Err   error
}
