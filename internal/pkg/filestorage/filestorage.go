package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/emre/teamforge/internal/pkg/logger"
)

// MaxAvatarSize is the upload size cap for profile pictures
const MaxAvatarSize = 5 * 1024 * 1024 // 5MB

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveAvatar stores an uploaded avatar image and returns its accessible path
	SaveAvatar(fileHeader *multipart.FileHeader) (string, error)

	// DeleteFile removes a stored file. Deleting a missing file is not an error
	DeleteFile(filePath string) error
}

// LocalStorage handles saving files to the local filesystem
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL to access the stored files
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it will be prepended to returned file paths.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "avatars"), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveAvatar stores an avatar under the avatars subdirectory with a
// generated name so uploads never collide
func (ls *LocalStorage) SaveAvatar(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", nil // No file uploaded
	}

	if fileHeader.Size > MaxAvatarSize {
		return "", fmt.Errorf("avatar exceeds maximum size of %d bytes", MaxAvatarSize)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAvatarExts[ext] {
		return "", fmt.Errorf("unsupported avatar file type: %s", ext)
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(ls.basePath, "avatars", uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		// Attempt to remove the partially created file
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	var accessiblePath string
	if ls.baseURL != "" {
		accessiblePath = strings.TrimRight(ls.baseURL, "/") + "/avatars/" + uniqueFilename
	} else {
		accessiblePath = filepath.Join("uploads", "avatars", uniqueFilename)
	}

	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("saved_as", uniqueFilename).
		Msg("Avatar saved successfully")
	return accessiblePath, nil
}

// DeleteFile removes a file from the storage filesystem. It accepts the path
// as stored on the user row (e.g. uploads/avatars/filename.jpg). Returns nil
// if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil // Nothing to delete
	}

	filename := filepath.Base(filePath)
	if filename == "" || filename == "." || filename == "/" {
		return fmt.Errorf("invalid file path: %s", filePath)
	}

	physicalPath := filepath.Join(ls.basePath, "avatars", filename)

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil // Idempotent delete
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}
