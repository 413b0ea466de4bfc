package laws

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
)

// RepositoryPort defines data access methods for statutes.
type RepositoryPort interface {
	ListLaws(ctx context.Context) ([]Law, error)
	GetLaw(ctx context.Context, id string) (*Law, error)
	CreateLaw(ctx context.Context, law Law) (Law, error)
	UpdateLaw(ctx context.Context, law Law) error
	DeleteLaw(ctx context.Context, id string) error
}

// Service handles statute business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// ListLaws returns all statutes ordered by category and paragraph.
func (s *Service) ListLaws(ctx context.Context) ([]Law, error) {
	out, err := s.repo.ListLaws(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out, nil
}

// GetLaw returns a single statute.
func (s *Service) GetLaw(ctx context.Context, id string) (*Law, error) {
	return s.repo.GetLaw(ctx, id)
}

// CreateLaw validates and stores a statute.
func (s *Service) CreateLaw(ctx context.Context, input Input) (Law, error) {
	if err := s.validate.Struct(input); err != nil {
		return Law{}, err
	}
	return s.repo.CreateLaw(ctx, fromInput("", input))
}

// UpdateLaw validates and overwrites a statute.
func (s *Service) UpdateLaw(ctx context.Context, id string, input Input) (*Law, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	law := fromInput(id, input)
	if err := s.repo.UpdateLaw(ctx, law); err != nil {
		return nil, err
	}
	return &law, nil
}

// DeleteLaw removes a statute.
func (s *Service) DeleteLaw(ctx context.Context, id string) error {
	return s.repo.DeleteLaw(ctx, id)
}

func fromInput(id string, input Input) Law {
	return Law{
		ID:          id,
		Paragraph:   input.Paragraph,
		Category:    input.Category,
		Title:       input.Title,
		Description: input.Description,
	}
}
