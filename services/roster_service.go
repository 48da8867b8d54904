package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
	"github.com/copafacil/copa-manager/storage"
	"github.com/google/uuid"
)

// Roster services cover the admin CRUD surface for teams, groups and
// players. Reads are public; mutations are campaign-scoped.

type TeamService interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
}

type GroupService interface {
	Create(ctx context.Context, group *models.Group) error
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int) error
}

type PlayerService interface {
	Create(ctx context.Context, player *models.Player) error
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, uploader: uploader}
}

func (s *teamService) Create(ctx context.Context, team *models.Team) error {
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return ErrTeamNameRequired
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return mapTeamRepoError(err)
	}
	return nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		s.populateLogoURL(t)
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, team *models.Team) error {
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return ErrTeamNameRequired
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return mapTeamRepoError(err)
	}
	return nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	return mapTeamRepoError(s.teamRepo.Delete(ctx, id))
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	key := fmt.Sprintf("teams/%d/logo-%s", teamID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	oldKey := team.LogoKey
	team.LogoKey = &result.Key
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, mapTeamRepoError(err)
	}
	if oldKey != nil && *oldKey != result.Key {
		// Old object is orphaned either way if this fails; not worth surfacing.
		_ = s.uploader.Delete(ctx, *oldKey)
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && s.uploader != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		team.LogoURL = &url
	}
}

func mapTeamRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamGroupInvalid):
		return ErrGroupNotFound
	default:
		return err
	}
}

type groupService struct {
	groupRepo repositories.GroupRepository
}

func NewGroupService(groupRepo repositories.GroupRepository) GroupService {
	return &groupService{groupRepo: groupRepo}
}

func (s *groupService) Create(ctx context.Context, group *models.Group) error {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return ErrGroupNameRequired
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, repositories.ErrGroupNameConflict) {
			return ErrGroupNameConflict
		}
		return err
	}
	return nil
}

func (s *groupService) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Group, error) {
	return s.groupRepo.ListByCampaign(ctx, campaignID)
}

func (s *groupService) Update(ctx context.Context, group *models.Group) error {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return ErrGroupNameRequired
	}
	err := s.groupRepo.Update(ctx, group)
	switch {
	case errors.Is(err, repositories.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrGroupNameConflict):
		return ErrGroupNameConflict
	}
	return err
}

func (s *groupService) Delete(ctx context.Context, id int) error {
	err := s.groupRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrGroupNotFound) {
		return ErrGroupNotFound
	}
	return err
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) Create(ctx context.Context, player *models.Player) error {
	player.Name = strings.TrimSpace(player.Name)
	if player.Name == "" {
		return ErrPlayerNameRequired
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamInvalid) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *playerService) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	return s.playerRepo.ListByTeam(ctx, teamID)
}

func (s *playerService) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Player, error) {
	return s.playerRepo.ListByCampaign(ctx, campaignID)
}

func (s *playerService) Update(ctx context.Context, player *models.Player) error {
	player.Name = strings.TrimSpace(player.Name)
	if player.Name == "" {
		return ErrPlayerNameRequired
	}
	err := s.playerRepo.Update(ctx, player)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return ErrPlayerNotFound
	}
	return err
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	err := s.playerRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return ErrPlayerNotFound
	}
	return err
}
