package models

import "time"

// Image describes server-side metadata for an uploaded image. The payload
// itself goes straight to object storage via a presigned URL.
type Image struct {
	ID         string
	SessionID  string
	DeviceID   string
	FileName   string
	StorageKey string
	CreatedAt  time.Time
}
