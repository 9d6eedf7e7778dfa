package transfer

import (
	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
)

type SocialAccountSummary struct {
	ID                      uuid.UUID          `json:"id"`
	NetworkType             models.NetworkType `json:"network_type"`
	Name                    string             `json:"name"`
	Username                *string            `json:"username"`
	IsActive                bool               `json:"is_active"`
	RequiresReauthorization bool               `json:"requires_reauthorization"`
}

func NewSocialAccountSummary(a *models.SocialAccount) *SocialAccountSummary {
	return &SocialAccountSummary{
		ID:                      a.ID,
		NetworkType:             a.NetworkType,
		Name:                    a.Name,
		Username:                a.Username,
		IsActive:                a.IsActive,
		RequiresReauthorization: a.RequiresReauthorization,
	}
}
