package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStorageService handles storing uploaded card images
type ImageStorageService struct {
	storageDir string
}

// NewImageStorageService creates a new image storage service
func NewImageStorageService(storageDir string) *ImageStorageService {
	if storageDir == "" {
		storageDir = "./data/uploads"
	}

	// Ensure the storage directory exists
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		// Log error but don't fail - will fail on actual writes
		fmt.Printf("Warning: could not create upload directory: %v\n", err)
	}

	return &ImageStorageService{
		storageDir: storageDir,
	}
}

// allowedImageExtensions are the upload types the dashboard accepts.
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsAllowedExtension reports whether the filename has an accepted image type.
func IsAllowedExtension(filename string) bool {
	return allowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SaveImage saves image data to disk and returns the filename
func (s *ImageStorageService) SaveImage(imageData []byte, ext string) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	ext = strings.ToLower(ext)
	if !allowedImageExtensions[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	// Generate a unique filename
	filename := uuid.New().String() + ext
	filePath := filepath.Join(s.storageDir, filename)

	// Write the file
	if err := os.WriteFile(filePath, imageData, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return filename, nil
}

// GetStorageDir returns the storage directory path
func (s *ImageStorageService) GetStorageDir() string {
	return s.storageDir
}
