package service

import (
	"context"
	"fmt"
	"time"

	"learnmyway/internal/model"
	"learnmyway/internal/repository"
)

// MaterialService handles study material records and their upload
// notifications.
type MaterialService struct {
	materialRepo repository.MaterialRepo
	notifier     Notifier
}

// NewMaterialService creates a new material service
func NewMaterialService(materialRepo repository.MaterialRepo, notifier Notifier) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		notifier:     notifier,
	}
}

// UploadMaterialRequest is the input for registering uploaded material.
type UploadMaterialRequest struct {
	FileName    string `json:"fileName"`
	FilePath    string `json:"filePath"`
	Subject     string `json:"subject"`
	Comment     string `json:"comment"`
	TargetClass string `json:"targetClass"`
}

// UploadMaterial saves a material record and notifies its target class.
// Uploads without an explicit target go to everyone.
func (s *MaterialService) UploadMaterial(ctx context.Context, req UploadMaterialRequest, uploadedBy string) (*model.Material, error) {
	if req.FileName == "" || req.Subject == "" {
		return nil, fmt.Errorf("file name and subject required")
	}

	targetClass := req.TargetClass
	if targetClass == "" {
		targetClass = model.TargetAll
	}

	material := &model.Material{
		FileName:    req.FileName,
		FilePath:    req.FilePath,
		Subject:     req.Subject,
		Comment:     req.Comment,
		UploadedBy:  uploadedBy,
		Timestamp:   time.Now(),
		TargetClass: targetClass,
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.notifier.Notify(material.TargetClass, material)

	return material, nil
}

// ListMaterials returns materials visible to a class; an empty class
// returns everything.
func (s *MaterialService) ListMaterials(ctx context.Context, class string) ([]*model.Material, error) {
	return s.materialRepo.List(ctx, class)
}
