package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gostatus/internal/common"
)

type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
	}
}

type MediaFile struct {
	ID         string            `json:"file_id"`     // GridFS ObjectID
	Filename   string            `json:"filename"`    // Original filename
	MimeType   string            `json:"mime_type"`   // Declared content type
	Size       int64             `json:"size_bytes"`  // File size in bytes
	Kind       common.StatusKind `json:"kind"`        // image or video
	UploadedBy int64             `json:"uploaded_by"` // Publisher who uploaded
	UploadedAt time.Time         `json:"uploaded_at"`
}

// UploadFile streams content into GridFS. Uploads larger than maxBytes are
// aborted and reported as a validation error; maxBytes <= 0 means no cap.
func (ms *MediaStorage) UploadFile(ctx context.Context, filename, mimeType string, uploaderID int64, content io.Reader, maxBytes int64) (*MediaFile, error) {
	kind := common.DetectFileType(mimeType)
	if kind == "" {
		return nil, common.Validationf("unsupported media type %q", mimeType)
	}

	metadata := bson.M{
		"kind":        kind.String(),
		"mime_type":   mimeType,
		"uploaded_by": strconv.FormatInt(uploaderID, 10),
		"uploaded_at": time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := ms.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	reader := content
	if maxBytes > 0 {
		reader = io.LimitReader(content, maxBytes+1)
	}
	size, err := io.Copy(stream, reader)
	if err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("file copy failed: %w", err)
	}
	if maxBytes > 0 && size > maxBytes {
		_ = stream.Abort()
		return nil, common.Validationf("%s exceeds maximum size of %d bytes", kind, maxBytes)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("upload close failed: %w", err)
	}

	return &MediaFile{
		ID:         stream.FileID.(primitive.ObjectID).Hex(),
		Filename:   filename,
		MimeType:   mimeType,
		Size:       size,
		Kind:       kind,
		UploadedBy: uploaderID,
		UploadedAt: time.Now(),
	}, nil
}

func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *MediaFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, common.Validationf("invalid file ID: %v", err)
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, fmt.Errorf("media %s: %w", fileID, common.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		_ = bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	uploader, _ := strconv.ParseInt(getStringFromMap(metadata, "uploaded_by"), 10, 64)
	mediaFile := &MediaFile{
		ID:         fileID,
		Filename:   fileInfo.Name,
		MimeType:   getStringFromMap(metadata, "mime_type"),
		Size:       fileInfo.Length,
		Kind:       common.StatusKind(getStringFromMap(metadata, "kind")),
		UploadedBy: uploader,
		UploadedAt: fileInfo.UploadDate,
	}

	return stream, mediaFile, nil
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return common.Validationf("invalid file ID: %v", err)
	}
	if err := ms.gridFS.Delete(objectID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("media %s: %w", fileID, common.ErrNotFound)
		}
		return err
	}
	return nil
}

// Helper function for metadata extraction
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
