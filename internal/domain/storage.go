package domain

import "time"

// DisplayDateLayout is the MM/DD/YYYY format shown on the settings page.
const DisplayDateLayout = "01/02/2006"

// StorageSummary aggregates what is currently stored.
type StorageSummary struct {
	ThreadCount int
	UsageBytes  int64
	Earliest    *time.Time
	Latest      *time.Time
}

// StorageStats is the storage panel view of the archive.
type StorageStats struct {
	DateRange   string
	Usage       string
	UsageBytes  int64
	ThreadCount int
	LastUpload  *time.Time
}
