package services

import "errors"

// Shared business-rule errors used across services and the HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrTeamNameRequired     = errors.New("team name is required")
	ErrGroupNameRequired    = errors.New("group name is required")
	ErrPlayerNameRequired   = errors.New("player name is required")
	ErrMatchTeamsRequired   = errors.New("match requires two distinct teams")
	ErrMatchAlreadyPlayed   = errors.New("match result already registered")
	ErrMatchNotPlayed       = errors.New("match has no registered result")
	ErrScoreRequired        = errors.New("both scores are required to register a result")
	ErrSlugInvalid          = errors.New("campaign slug is not a valid url slug")
	ErrSlugReserved         = errors.New("campaign slug is reserved")
	ErrPlanUnknown          = errors.New("unknown subscription plan")
	ErrCouponInvalid        = errors.New("coupon is expired, exhausted or inactive")
	ErrEmailRequired        = errors.New("email is required")
	ErrCampaignInactive     = errors.New("campaign is not active")
	ErrKnockoutDrawNoWinner = errors.New("knockout result is a draw without penalty shootout")

	// Conflicts
	ErrSlugTaken          = errors.New("campaign slug is already in use")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrGroupNameConflict  = errors.New("group name is already in use")
	ErrAdminUsernameTaken = errors.New("admin username is already in use")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrOwnerActionForbidden = errors.New("only the campaign owner can perform this action")
	ErrAdminInactive        = errors.New("admin account is deactivated")
	ErrResetTokenInvalid    = errors.New("invalid or expired reset token")

	// Entity-specific not-found, more context than the generic one
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrAdminNotFound    = errors.New("admin user not found")
	ErrPurchaseNotFound = errors.New("purchase not found")

	// Provisioning and webhooks
	ErrProvisionSlugMissing  = errors.New("payment metadata is missing the campaign slug")
	ErrProvisionEmailMissing = errors.New("payment metadata is missing the customer email")
	ErrWebhookSignature      = errors.New("webhook signature verification failed")
)
