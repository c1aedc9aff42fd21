package views

// Focus targets inside the job monitor and document search views
const (
	FocusInput = iota
	FocusList
)

// DefaultWidth is the default terminal width fallback
const DefaultWidth = 80

// MaxLinksShown caps the extracted links listed under one processed result.
const MaxLinksShown = 20
