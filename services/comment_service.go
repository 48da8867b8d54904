package services

import (
	"context"
	"errors"
	"strings"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
)

const maxCommentLength = 1000

// CommentService handles the only public write on a campaign site.
// Comments are visible immediately; moderation hides them after the fact.
type CommentService interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListPublic(ctx context.Context, campaignID int) ([]*models.Comment, error)
	ListAll(ctx context.Context, campaignID int) ([]*models.Comment, error)
	SetApproved(ctx context.Context, id int, approved bool) error
	Delete(ctx context.Context, id int) error
}

type commentService struct {
	commentRepo  repositories.CommentRepository
	campaignRepo repositories.CampaignRepository
}

func NewCommentService(commentRepo repositories.CommentRepository, campaignRepo repositories.CampaignRepository) CommentService {
	return &commentService{commentRepo: commentRepo, campaignRepo: campaignRepo}
}

func (s *commentService) Create(ctx context.Context, comment *models.Comment) error {
	comment.Author = strings.TrimSpace(comment.Author)
	comment.Body = strings.TrimSpace(comment.Body)
	if comment.Author == "" || comment.Body == "" {
		return ErrValidationFailed
	}
	if len(comment.Body) > maxCommentLength {
		return ErrValidationFailed
	}

	campaign, err := s.campaignRepo.GetByID(ctx, comment.CampaignID)
	if err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}
	if !campaign.IsActive {
		return ErrCampaignInactive
	}

	comment.Approved = true
	return s.commentRepo.Create(ctx, comment)
}

func (s *commentService) ListPublic(ctx context.Context, campaignID int) ([]*models.Comment, error) {
	return s.commentRepo.ListByCampaign(ctx, campaignID, true)
}

func (s *commentService) ListAll(ctx context.Context, campaignID int) ([]*models.Comment, error) {
	return s.commentRepo.ListByCampaign(ctx, campaignID, false)
}

func (s *commentService) SetApproved(ctx context.Context, id int, approved bool) error {
	if err := s.commentRepo.SetApproved(ctx, id, approved); err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *commentService) Delete(ctx context.Context, id int) error {
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
