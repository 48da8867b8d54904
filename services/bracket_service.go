package services

import (
	"context"
	"fmt"

	"github.com/copafacil/copa-manager/brackets"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
)

// BracketService reconstructs the knockout tree for the public site. There
// is no stored bracket entity; the tree is assembled from match rows on
// every request.
type BracketService interface {
	View(ctx context.Context, campaignID int) (*brackets.View, error)
}

type bracketService struct {
	matchRepo repositories.MatchRepository
}

func NewBracketService(matchRepo repositories.MatchRepository) BracketService {
	return &bracketService{matchRepo: matchRepo}
}

func (s *bracketService) View(ctx context.Context, campaignID int) (*brackets.View, error) {
	matches, err := s.matchRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for bracket: %w", err)
	}
	knockout := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.IsKnockout() {
			knockout = append(knockout, m)
		}
	}
	return brackets.Assemble(knockout), nil
}
