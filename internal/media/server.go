package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"gostatus/internal/common"
	"gostatus/internal/dbmongo"
	"gostatus/internal/logger"
	"gostatus/internal/status"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// multipart overhead allowed on top of the largest accepted file
const formSlack = 1 << 20

type Storage interface {
	UploadFile(ctx context.Context, filename, mimeType string, uploaderID int64, content io.Reader, maxBytes int64) (*dbmongo.MediaFile, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error)
}

type HTTPServer struct {
	storage      Storage
	limits       common.MediaLimits
	mediaBaseURL string
}

func NewHTTPServer(storage Storage, limits common.MediaLimits, mediaBaseURL string) *HTTPServer {
	return &HTTPServer{storage: storage, limits: limits, mediaBaseURL: mediaBaseURL}
}

// DownloadRoutes mounts the public GET /media/{fileId}.
func (s *HTTPServer) DownloadRoutes(r *mux.Router) {
	r.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet)
}

// UploadRoutes mounts POST /media; callers need an identity.
func (s *HTTPServer) UploadRoutes(r *mux.Router) {
	r.HandleFunc("/media", s.upload).Methods(http.MethodPost)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	reader, file, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	defer reader.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = contentTypeFor(file.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))
	w.Header().Set("Cache-Control", "private, max-age=86400")

	if _, err := io.Copy(w, reader); err != nil {
		logger.Log.WithError(err).WithField("file_id", fileID).Warn("error streaming media")
	}
}

type uploadResponse struct {
	FileID    string            `json:"file_id"`
	MimeType  string            `json:"mime_type"`
	SizeBytes int64             `json:"size_bytes"`
	Kind      common.StatusKind `json:"kind"`
	MediaURL  string            `json:"media_url,omitempty"`
}

func (s *HTTPServer) upload(w http.ResponseWriter, r *http.Request) {
	caller, err := common.Caller(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.largestLimit()+formSlack)
	part, header, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, common.Validationf("multipart field \"file\" is required"))
		return
	}
	defer part.Close()

	mimeType := header.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = contentTypeFor(header.Filename)
	}

	kind := common.DetectFileType(mimeType)
	if !kind.HasMedia() {
		common.WriteError(w, common.Validationf("unsupported media type %q", mimeType))
		return
	}
	maxBytes := s.limits.MaxImageBytes
	if kind == common.StatusKindVideo {
		maxBytes = s.limits.MaxVideoBytes
	}
	if header.Size > 0 && maxBytes > 0 && header.Size > maxBytes {
		common.WriteError(w, common.Validationf("%s exceeds %d bytes", kind, maxBytes))
		return
	}

	file, err := s.storage.UploadFile(r.Context(), header.Filename, mimeType, caller.UserID, part, maxBytes)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"file_id":     file.ID,
		"kind":        file.Kind,
		"size_bytes":  file.Size,
		"uploaded_by": caller.UserID,
	}).Info("media uploaded")

	common.WriteJSON(w, http.StatusCreated, uploadResponse{
		FileID:    file.ID,
		MimeType:  file.MimeType,
		SizeBytes: file.Size,
		Kind:      file.Kind,
		MediaURL:  status.MediaURL(s.mediaBaseURL, file.ID),
	})
}

func (s *HTTPServer) largestLimit() int64 {
	if s.limits.MaxVideoBytes > s.limits.MaxImageBytes {
		return s.limits.MaxVideoBytes
	}
	return s.limits.MaxImageBytes
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
