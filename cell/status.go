package cell

// Status is the display state of a cell
type Status int

const (
	// StatusUnevaluated is the state of a freshly created cell
	StatusUnevaluated Status = iota
	// StatusMatch means the store holds a non-empty page for the cell
	StatusMatch
	// StatusMissing means the page is absent or empty
	StatusMissing
	// StatusInfo marks cells that cannot be compared with a single page
	StatusInfo
	// StatusError means the store could not be read
	StatusError
)

var statusSymbols = map[Status]string{
	StatusUnevaluated: "…",
	StatusMatch:       "✅",
	StatusMissing:     "❌",
	StatusInfo:        "ⓘ",
	StatusError:       "❗",
}

var statusNames = map[Status]string{
	StatusUnevaluated: "unevaluated",
	StatusMatch:       "match",
	StatusMissing:     "missing",
	StatusInfo:        "info",
	StatusError:       "error",
}

// Symbol returns the grid symbol of the status
func (s Status) Symbol() string {
	return statusSymbols[s]
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}
