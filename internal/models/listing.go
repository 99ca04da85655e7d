package models

import "s3sync/internal/listing"

type ListResult struct {
	BucketName  string                `json:"bucket_name"`
	Prefix      string                `json:"prefix"`
	Directories []listing.ObjectEntry `json:"directories"`
	Files       []listing.ObjectEntry `json:"files"`
	Count       int                   `json:"count"`
	NextMarker  string                `json:"next_marker,omitempty"`
}
