package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MaturityMaxing/sportns/models"
	"github.com/MaturityMaxing/sportns/repositories"
	"github.com/MaturityMaxing/sportns/storage"
)

// SportService manages the sport catalogue that games reference.
type SportService struct {
	sports   repositories.SportRepository
	uploader storage.FileUploader
}

func NewSportService(sports repositories.SportRepository, uploader storage.FileUploader) *SportService {
	return &SportService{
		sports:   sports,
		uploader: uploader,
	}
}

func (s *SportService) Create(ctx context.Context, name string) (*models.Sport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSportNameRequired
	}
	sport := &models.Sport{Name: name}
	if err := s.sports.Create(ctx, sport); err != nil {
		if errors.Is(err, repositories.ErrSportNameConflict) {
			return nil, ErrSportNameConflict
		}
		return nil, err
	}
	return sport, nil
}

func (s *SportService) List(ctx context.Context) ([]models.Sport, error) {
	sports, err := s.sports.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sports {
		s.populateIconURL(&sports[i])
	}
	return sports, nil
}

// UploadIcon stores the sport's icon image and records its key.
func (s *SportService) UploadIcon(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Sport, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("media uploader is not configured")
	}
	sport, err := s.sports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("sports/%d%s", id, ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload sport icon: %w", err)
	}
	if err := s.sports.UpdateIconKey(ctx, id, &key); err != nil {
		return nil, err
	}
	sport.IconKey = &key
	s.populateIconURL(sport)
	return sport, nil
}

func (s *SportService) populateIconURL(sport *models.Sport) {
	if sport.IconKey != nil && *sport.IconKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*sport.IconKey); url != "" {
			sport.IconURL = &url
		}
	}
}
