package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/audifyai/callaudit-backend/internal/platform/logger"
)

// SavedFile is one validated upload persisted under the upload directory.
type SavedFile struct {
	Path         string
	OriginalName string
	Size         int64
}

type FileService interface {
	// ValidateAndSave checks count, extension, size, and sniffed content type
	// for every part, then writes each one under a fresh uuid name. On any
	// validation error nothing is kept on disk.
	ValidateAndSave(files []*multipart.FileHeader) ([]SavedFile, error)
	Cleanup(files []SavedFile)
	TotalSize(files []SavedFile) int64
}

type FileServiceConfig struct {
	UploadDir      string
	MaxFileSize    int64
	MaxFiles       int
	AllowedFormats []string
}

type fileService struct {
	log *logger.Logger
	cfg FileServiceConfig
}

func NewFileService(cfg FileServiceConfig, baseLog *logger.Logger) (FileService, error) {
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &fileService{
		log: baseLog.With("service", "FileService"),
		cfg: cfg,
	}, nil
}

func (fs *fileService) ValidateAndSave(files []*multipart.FileHeader) ([]SavedFile, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files attached")
	}
	if fs.cfg.MaxFiles > 0 && len(files) > fs.cfg.MaxFiles {
		return nil, fmt.Errorf("maximum %d files allowed per request", fs.cfg.MaxFiles)
	}

	saved := make([]SavedFile, 0, len(files))
	for _, fh := range files {
		sf, err := fs.validateAndSaveOne(fh)
		if err != nil {
			fs.Cleanup(saved)
			return nil, err
		}
		saved = append(saved, sf)
	}
	return saved, nil
}

func (fs *fileService) validateAndSaveOne(fh *multipart.FileHeader) (SavedFile, error) {
	if fh.Filename == "" {
		return SavedFile{}, fmt.Errorf("file must have a filename")
	}
	if fs.cfg.MaxFileSize > 0 && fh.Size > fs.cfg.MaxFileSize {
		return SavedFile{}, fmt.Errorf("file %s is too large, maximum size is %dMB",
			fh.Filename, fs.cfg.MaxFileSize/(1024*1024))
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !fs.extAllowed(ext) {
		return SavedFile{}, fmt.Errorf("file format %s not allowed, allowed formats: %s",
			ext, strings.Join(fs.cfg.AllowedFormats, ", "))
	}

	src, err := fh.Open()
	if err != nil {
		return SavedFile{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return SavedFile{}, fmt.Errorf("sniff upload %s: %w", fh.Filename, err)
	}
	if !strings.HasPrefix(mt.String(), "audio/") && !strings.HasPrefix(mt.String(), "video/") {
		// Some containers (m4a) sniff as video/mp4; anything else is rejected.
		return SavedFile{}, fmt.Errorf("file %s is not an audio file, detected type: %s", fh.Filename, mt.String())
	}
	if _, err := src.Seek(0, 0); err != nil {
		return SavedFile{}, fmt.Errorf("rewind upload %s: %w", fh.Filename, err)
	}

	dstPath := filepath.Join(fs.cfg.UploadDir, uuid.New().String()+ext)
	dst, err := os.Create(dstPath)
	if err != nil {
		return SavedFile{}, fmt.Errorf("create %s: %w", dstPath, err)
	}
	written, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return SavedFile{}, fmt.Errorf("save %s: %w", fh.Filename, err)
	}

	fs.log.Info("Validated and saved upload", "filename", fh.Filename, "path", dstPath, "size", written)
	return SavedFile{Path: dstPath, OriginalName: fh.Filename, Size: written}, nil
}

func (fs *fileService) extAllowed(ext string) bool {
	if len(fs.cfg.AllowedFormats) == 0 {
		return true
	}
	for _, allowed := range fs.cfg.AllowedFormats {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

func (fs *fileService) Cleanup(files []SavedFile) {
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			fs.log.Warn("Failed to clean up upload", "path", f.Path, "error", err)
			continue
		}
		fs.log.Debug("Cleaned up upload", "path", f.Path)
	}
}

func (fs *fileService) TotalSize(files []SavedFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
