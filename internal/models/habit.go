// Package models defines the domain types for the habit dashboard.
package models

// Page is a page known to the host graph. JournalDay is the encoded
// YYYYMMDD date of a journal page and zero for every other page.
type Page struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName,omitempty"`
	JournalDay   int    `json:"journalDay,omitempty"`
}

// IsJournal reports whether the page carries a journal date.
func (p Page) IsJournal() bool {
	return p.JournalDay != 0
}

// Block is one outline item of a page with its nested children.
type Block struct {
	UUID     string   `json:"uuid"`
	Content  string   `json:"content"`
	Children []*Block `json:"children,omitempty"`
}

// HabitEntry is one recorded occurrence of a habit on a journal day.
// Time is empty when the block carried no recognizable time token.
type HabitEntry struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	Page      string `json:"page"`
	BlockUUID string `json:"blockUuid"`
}

// HasTime reports whether the entry carries a clock time.
func (e HabitEntry) HasTime() bool {
	return e.Time != ""
}

// HabitStats is the aggregated view of all entries for one habit name.
type HabitStats struct {
	Name       string       `json:"name"`
	TotalCount int          `json:"totalCount"`
	Entries    []HabitEntry `json:"entries"`
}

// UI is a markup payload addressed to a host UI slot. Key identifies the
// renderer instance; with Reset the previous payload under Key is replaced.
type UI struct {
	Key      string `json:"key"`
	Slot     string `json:"slot"`
	Reset    bool   `json:"reset"`
	Template string `json:"template"`
}
