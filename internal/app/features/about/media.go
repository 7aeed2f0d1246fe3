// internal/app/features/about/media.go
package about

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	aboutstore "github.com/dalemusser/portfolio/internal/app/store/about"
	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/limits"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/portfolio/internal/app/system/uploads"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// upload describes one kind of media the profile can hold.
type upload struct {
	field    aboutstore.MediaField
	dir      string
	jsonKey  string
	maxBytes int64
	allowed  map[string]bool // sniffed content types
	typeErr  string
}

var (
	profileImageUpload = upload{
		field:    aboutstore.MediaProfileImage,
		dir:      "about/profile",
		jsonKey:  "profileImage",
		maxBytes: limits.MaxProfileImageSize,
		allowed: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
		},
		typeErr: "Please upload a JPEG, PNG, GIF or WebP image",
	}
	resumeUpload = upload{
		field:    aboutstore.MediaResume,
		dir:      "about/resume",
		jsonKey:  "resumeUrl",
		maxBytes: limits.MaxResumeSize,
		allowed:  map[string]bool{"application/pdf": true},
		typeErr:  "Please upload a PDF file",
	}
)

// HandleProfileImage handles PUT /about/profile-image (multipart "file").
func (h *Handler) HandleProfileImage(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, profileImageUpload)
}

// HandleResume handles PUT /about/resume (multipart "file").
func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, resumeUpload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, u upload) {
	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(u.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, r, h.Log, apierr.BadRequest(fmt.Sprintf("File must be smaller than %d MB", u.maxBytes>>20)))
			return
		}
		respond.Error(w, r, h.Log, apierr.BadRequest("Please upload a file"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, h.Log, apierr.BadRequest("Please upload a file"))
		return
	}
	defer file.Close()

	if header.Size > u.maxBytes {
		respond.Error(w, r, h.Log, apierr.BadRequest(fmt.Sprintf("File must be smaller than %d MB", u.maxBytes>>20)))
		return
	}
	ctype, err := sniff(file)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !u.allowed[ctype] {
		respond.Error(w, r, h.Log, apierr.Validation(u.typeErr, map[string]string{"file": u.typeErr}))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "upload "+u.dir)
	defer cancel()

	// The profile must exist before anything is written to storage.
	if _, err := h.Store.Get(ctx); err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}

	path := uploads.Path(u.dir, header.Filename)
	if err := h.Storage.Put(ctx, path, file, &storage.PutOptions{ContentType: ctype}); err != nil {
		respond.Error(w, r, h.Log, fmt.Errorf("store upload: %w", err))
		return
	}
	url := h.Storage.URL(path)

	previous, err := h.Store.SetMedia(ctx, u.field, url)
	if err != nil {
		h.removeObject(ctx, path)
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	if old, ok := uploads.PathFromURL(h.Storage, previous); ok {
		h.removeObject(ctx, old)
	}

	h.audit(ctx, r, audit.EventAboutMediaUpdated, map[string]string{"field": string(u.field)})
	respond.Message(w, "File uploaded successfully", map[string]string{u.jsonKey: url})
}

func (h *Handler) removeObject(ctx context.Context, path string) {
	if err := h.Storage.Delete(ctx, path); err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.Log.Warn("failed to remove stored file", zap.String("path", path), zap.Error(err))
	}
}

// sniff detects the content type from the first bytes and rewinds.
func sniff(f multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return "", apierr.BadRequest("Uploaded file is empty")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}
