package dbmysql

// MediaRef points at a file stored in GridFS.
type MediaRef struct {
	FileID    string `json:"file_id"` // MongoDB ObjectID hex
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}
