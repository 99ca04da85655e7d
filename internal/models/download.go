package models

type DownloadItem struct {
	RemotePath   string `json:"remote_path"`
	LocalPath    string `json:"local_path"`
	Status       string `json:"status"`
	Size         int64  `json:"size,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	MirrorPath   string `json:"mirror_path,omitempty"`
	Error        string `json:"error,omitempty"`
}

type DownloadResult struct {
	BucketName       string         `json:"bucket_name"`
	Selection        []string       `json:"selection"`
	Destination      string         `json:"destination"`
	MirrorDir        string         `json:"mirror_dir,omitempty"`
	Items            []DownloadItem `json:"items"`
	FetchedCount     int            `json:"fetched_count"`
	ReusedCount      int            `json:"reused_count"`
	SkippedCount     int            `json:"skipped_count"`
	FailedCount      int            `json:"failed_count"`
	TotalSizeBytes   int64          `json:"total_size_bytes"`
	TotalSizeHuman   string         `json:"total_size_human"`
	OperationTime    string         `json:"operation_time"`
	DownloadDuration string         `json:"download_duration"`
	DryRun           bool           `json:"dry_run,omitempty"`
}

// Item statuses reported in DownloadItem.Status.
const (
	StatusFetched = "fetched"
	StatusPlanned = "planned"
	StatusReused  = "reused"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)
