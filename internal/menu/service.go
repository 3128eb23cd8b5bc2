package menu

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Menu returns the restaurant's available items grouped by category.
func (s *Service) Menu(ctx context.Context, restaurantID int64) ([]Section, error) {
	items, err := s.repo.ListAvailable(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(items), nil
}
