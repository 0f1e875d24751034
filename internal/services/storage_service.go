package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StorageService stores photographic evidence on the local blob volume under
// a deterministic campaign/role/driver/date path, so the same submission
// always lands in the same place regardless of which node handled it.
type StorageService struct {
	storageDir string
	baseURL    string
}

func NewStorageService(baseURL string) *StorageService {
	storageDir := os.Getenv("EVIDENCE_STORAGE_DIR")
	if storageDir == "" {
		storageDir = "./storage/evidence"
	}

	if err := os.MkdirAll(storageDir, 0755); err != nil {
		logrus.Warnf("Failed to create storage directory %s: %v", storageDir, err)
	}

	return &StorageService{
		storageDir: storageDir,
		baseURL:    baseURL,
	}
}

// SavePhoto writes one photo and returns its public URL. The path is
// <campaign>/<role>/<driver>/<yyyy-mm-dd>/<uuid>.jpg.
func (s *StorageService) SavePhoto(campaignID, role, driverID string, data []byte) (string, error) {
	relDir := filepath.Join(campaignID, role, driverID, time.Now().UTC().Format("2006-01-02"))
	dir := filepath.Join(s.storageDir, relDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evidence directory: %w", err)
	}

	fileName := uuid.New().String() + ".jpg"
	filePath := filepath.Join(dir, fileName)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}

	url := s.baseURL + "/uploads/" + filepath.ToSlash(filepath.Join(relDir, fileName))
	return url, nil
}

// Dir returns the storage root, used by the router to serve /uploads.
func (s *StorageService) Dir() string {
	return s.storageDir
}
