package dto

// StorageStatsResponse is the GET /api/db body.
type StorageStatsResponse struct {
	DateRange   string `json:"dateRange"`
	AWSUsage    string `json:"awsUsage"`
	UsageBytes  int64  `json:"usageBytes"`
	ThreadCount int    `json:"threadCount"`
	LastUpload  string `json:"lastUpload"`
}

// UpdateDataResponse is the POST /api/db body.
type UpdateDataResponse struct {
	Imported   int      `json:"imported"`
	Files      []string `json:"files"`
	Skipped    []string `json:"skipped"`
	Deleted    int64    `json:"deleted"`
	LastUpload string   `json:"lastUpload,omitempty"`
}
