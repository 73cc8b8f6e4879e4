package models

import "time"

// Snapshot is the unit of persistence for the outbox: the whole offline
// state serialised as one JSON document.
type Snapshot struct {
	Favorites     []string        `json:"favorites"`
	SearchHistory []string        `json:"searchHistory"`
	Suggestions   []Suggestion    `json:"suggestions"`
	Actions       []PendingAction `json:"pendingActions"`
	LastSync      time.Time       `json:"lastSync"`
}

func EmptySnapshot() Snapshot {
	return Snapshot{
		Favorites:     []string{},
		SearchHistory: []string{},
		Suggestions:   []Suggestion{},
		Actions:       []PendingAction{},
	}
}

// Stats summarises the outbox for display.
type Stats struct {
	TotalActions       int        `json:"totalActions"`
	UnsyncedActions    int        `json:"unsyncedActions"`
	LastSync           *time.Time `json:"lastSync"`
	Favorites          int        `json:"favoritesCount"`
	SearchHistory      int        `json:"searchHistoryCount"`
	PendingSuggestions int        `json:"pendingSuggestionsCount"`
}

// SyncSummary is the outcome of one reconciliation pass. Skipped is set when
// the pass did not run (offline or another pass in flight).
type SyncSummary struct {
	Success int
	Failed  int
	Skipped bool
}
