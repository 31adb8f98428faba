package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/darwinsql/darwinctl/internal/models"
)

// EnsureProfile creates the profile on first login, or refreshes its
// identity-provider attributes on later logins. The update timestamp
// refreshes on every mutation.
func EnsureProfile(p models.Profile) (*models.Profile, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("profile id is required")
	}

	var existing models.Profile
	err := DB.First(&existing, "id = ?", p.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := DB.Create(&p).Error; err != nil {
			return nil, fmt.Errorf("failed to create profile %s: %w", p.ID, err)
		}
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile %s: %w", p.ID, err)
	}

	existing.Name = p.Name
	existing.Email = p.Email
	existing.Subject = p.Subject
	existing.UserName = p.UserName
	existing.Region = p.Region
	existing.UserPoolID = p.UserPoolID
	if err := DB.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", p.ID, err)
	}

	return &existing, nil
}

// GetProfile retrieves a profile by its subject id.
func GetProfile(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := DB.First(&profile, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("profile %s not found", id)
	}
	return &profile, nil
}

// DeleteProfile removes a profile and, through the ownership cascade, every
// domain, area and task it owns. The application never calls this; it exists
// for administrative cleanup only.
func DeleteProfile(id string) error {
	res := DB.Delete(&models.Profile{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}
