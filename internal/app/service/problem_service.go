package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

type CreateProblemRequest struct {
	Title           string           `json:"title" yaml:"title"`
	Slug            string           `json:"slug,omitempty" yaml:"slug"`
	Category        string           `json:"category" yaml:"category"`
	Description     string           `json:"description" yaml:"description"`
	LongDescription *string          `json:"longDescription,omitempty" yaml:"longDescription"`
	Difficulty      int              `json:"difficulty" yaml:"difficulty"`
	Prize           string           `json:"prize" yaml:"prize"`
	Color           string           `json:"color" yaml:"color"`
	Requirements    model.StringList `json:"requirements,omitempty" yaml:"requirements"`
	Resources       model.Resources  `json:"resources,omitempty" yaml:"resources"`
	Timeline        model.Timeline   `json:"timeline,omitempty" yaml:"timeline"`
	Evaluation      model.Evaluation `json:"evaluation,omitempty" yaml:"evaluation"`
	FAQs            model.FAQs       `json:"faqs,omitempty" yaml:"faqs"`
	IsActive        *bool            `json:"isActive,omitempty" yaml:"isActive"`
}

func (s *ProblemService) List(ctx context.Context, activeOnly bool) ([]model.Problem, error) {
	return s.problemRepo.List(ctx, activeOnly)
}

// Get resolves idOrSlug as an id when it parses as a UUID and as a slug otherwise.
func (s *ProblemService) Get(ctx context.Context, idOrSlug string) (*model.Problem, error) {
	var (
		problem *model.Problem
		err     error
	)
	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		problem, err = s.problemRepo.FindByID(ctx, idOrSlug)
	} else {
		problem, err = s.problemRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Problem not found")
		}
		return nil, err
	}
	return problem, nil
}

func validateProblem(p *model.Problem) error {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Category) == "" || strings.TrimSpace(p.Description) == "" ||
		strings.TrimSpace(p.Prize) == "" || strings.TrimSpace(p.Color) == "" {
		return common.ValidationError("Title, category, description, prize and color are required")
	}
	if p.Difficulty < model.MinDifficulty || p.Difficulty > model.MaxDifficulty {
		return common.ValidationError("Difficulty must be between %d and %d", model.MinDifficulty, model.MaxDifficulty)
	}
	if p.Slug == "" {
		return common.ValidationError("Slug is required")
	}
	for _, c := range p.Evaluation {
		if c.Weight < 0 {
			return common.ValidationError("Evaluation weights must not be negative")
		}
	}
	return nil
}

func (s *ProblemService) Create(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	p := &model.Problem{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Slug:            strings.TrimSpace(req.Slug),
		Category:        req.Category,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Difficulty:      req.Difficulty,
		Prize:           req.Prize,
		Color:           req.Color,
		Requirements:    req.Requirements,
		Resources:       req.Resources,
		Timeline:        req.Timeline,
		Evaluation:      req.Evaluation,
		FAQs:            req.FAQs,
		IsActive:        true,
	}
	if p.Slug == "" {
		p.Slug = slug.Make(p.Title)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := validateProblem(p); err != nil {
		return nil, err
	}
	if err := s.problemRepo.Create(ctx, nil, p); err != nil {
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}
	return p, nil
}

func (s *ProblemService) Update(ctx context.Context, id string, patch model.ProblemPatch) (*model.Problem, error) {
	p, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Problem not found")
		}
		return nil, err
	}
	patch.Apply(p)
	if err := validateProblem(p); err != nil {
		return nil, err
	}
	if err := s.problemRepo.Update(ctx, nil, p); err != nil {
		return nil, fmt.Errorf("failed to update problem: %w", err)
	}
	return p, nil
}
