package intake

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kbukum/voiceingest/cleanup"
	apperrors "github.com/kbukum/voiceingest/errors"
	"github.com/kbukum/voiceingest/logger"
)

// UploadedAudio is an accepted upload stored in a temporary file.
type UploadedAudio struct {
	Path     string
	MimeType string
	FileName string
	Size     int64
	Identity string
}

// Intake validates uploads and spools them to disk.
type Intake struct {
	cfg Config
	log *logger.Logger
}

// New creates an Intake.
func New(cfg Config, log *logger.Logger) *Intake {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Intake{cfg: cfg, log: log.WithComponent("intake")}
}

// Accept parses r, validates the upload and copies it to a temp file that
// is tracked by scope. Validation failures are *errors.AppError.
func (in *Intake) Accept(r *http.Request, scope *cleanup.Scope) (*UploadedAudio, error) {
	if err := r.ParseMultipartForm(in.cfg.maxMemory()); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.UploadTooLarge(tooLarge.Limit).WithCause(err)
		}
		return nil, apperrors.MissingAudioFile(in.cfg.FileFields...).WithCause(err)
	}
	if r.MultipartForm != nil {
		// Parts spilled to disk by the parser are not ours to keep.
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	header := in.findFile(r)
	if header == nil {
		return nil, apperrors.MissingAudioFile(in.cfg.FileFields...)
	}
	if header.Size == 0 || header.Size < in.cfg.minBytes() {
		return nil, apperrors.EmptyAudioUpload(header.Size)
	}

	identity := ResolveIdentity(SourceFromRequest(r, in.cfg.Identity))
	if identity == "" {
		return nil, apperrors.MissingUserID()
	}

	mimeType := header.Header.Get("Content-Type")
	path, err := in.spool(header, scope)
	if err != nil {
		return nil, apperrors.Internal(err).WithDetails(logger.Fields(
			"file_name", header.Filename,
			logger.FieldSize, header.Size,
			logger.FieldMimeType, mimeType,
		))
	}

	audio := &UploadedAudio{
		Path:     path,
		MimeType: mimeType,
		FileName: header.Filename,
		Size:     header.Size,
		Identity: identity,
	}
	in.log.Debug("upload accepted", logger.Fields(
		logger.FieldUserID, identity,
		logger.FieldMimeType, mimeType,
		logger.FieldSize, header.Size,
	))
	return audio, nil
}

func (in *Intake) findFile(r *http.Request) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	for _, field := range in.cfg.FileFields {
		if files := r.MultipartForm.File[field]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

// spool copies the upload into a new temp file. The file is tracked before
// the copy starts.
func (in *Intake) spool(header *multipart.FileHeader, scope *cleanup.Scope) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(in.cfg.TempDir, "stt-*"+extension(header))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	scope.Track(dst.Name())

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), nil
}

// extension picks a file suffix from the original name, falling back to
// the declared content type.
func extension(header *multipart.FileHeader) string {
	if ext := filepath.Ext(header.Filename); ext != "" && len(ext) <= 8 && !strings.ContainsAny(ext, `/\`) {
		return strings.ToLower(ext)
	}
	base, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	if m := mimetype.Lookup(base); m != nil {
		return m.Extension()
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
