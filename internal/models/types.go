package models

import "time"

type Bucket struct {
	Name         string    `json:"name"`
	Region       string    `json:"region,omitempty"`
	CreationDate time.Time `json:"creation_date"`
}

type BucketList struct {
	Region  string   `json:"region,omitempty"`
	Buckets []Bucket `json:"buckets"`
	Count   int      `json:"count"`
}

type BucketInfo struct {
	BucketName     string    `json:"bucket_name"`
	Region         string    `json:"region"`
	CreationDate   time.Time `json:"creation_date"`
	Prefix         string    `json:"prefix,omitempty"`
	ObjectCount    int64     `json:"object_count"`
	TotalSizeBytes int64     `json:"total_size_bytes"`
	TotalSizeHuman string    `json:"total_size_human"`
	LastModified   time.Time `json:"last_modified"`
	APIEndpoint    string    `json:"api_endpoint,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

type DeleteFailure struct {
	Key     string `json:"key"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type DeleteResult struct {
	BucketName    string          `json:"bucket_name"`
	Selection     []string        `json:"selection"`
	DeletedFiles  []string        `json:"deleted_files"`
	DeletedCount  int             `json:"deleted_count"`
	Failures      []DeleteFailure `json:"failures,omitempty"`
	FailedCount   int             `json:"failed_count"`
	OperationTime string          `json:"operation_time"`
	DryRun        bool            `json:"dry_run,omitempty"`
}

type ObjectText struct {
	BucketName  string `json:"bucket_name"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	Truncated   bool   `json:"truncated,omitempty"`
}
