package models

// SyncStatus is the per-pass status document written to the registry store.
type SyncStatus struct {
	RunID            string `json:"runId"`
	LastSync         string `json:"lastSync"`
	LastSyncSuccess  bool   `json:"lastSyncSuccess"`
	ProfileCount     int    `json:"profileCount"`
	GroupCount       int    `json:"groupCount"`
	Created          int    `json:"created"`
	Updated          int    `json:"updated"`
	Errors           int    `json:"errors"`
	Error            string `json:"error,omitempty"`
	DurationMillis   int64  `json:"durationMillis"`
	AutoSyncEnabled  bool   `json:"autoSyncEnabled"`
	AutoSyncInterval int    `json:"autoSyncInterval"` // minutes
	SyncSource       string `json:"syncSource"`
}
