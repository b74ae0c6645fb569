package entity

import "time"

// DocumentFile metadatos de un adjunto; el contenido vive en el BlobStore bajo StoragePath.
type DocumentFile struct {
	ID          string
	DocumentID  string
	FileName    string
	StoragePath string
	FileSize    int64
	FileType    string
	UploadedBy  string
	UploadedAt  time.Time
}
