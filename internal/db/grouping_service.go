package db

import (
	"fmt"
	"unicode/utf8"

	"github.com/darwinsql/darwinctl/internal/models"
)

// CreateDomain creates a new top-level grouping for a profile.
func CreateDomain(name, creatorFK string) (*models.Domain, error) {
	if name == "" || utf8.RuneCountInString(name) > 32 {
		return nil, fmt.Errorf("domain name must be 1-32 characters")
	}

	domain := models.Domain{
		DomainName: name,
		CreatorFK:  creatorFK,
	}
	if err := DB.Create(&domain).Error; err != nil {
		return nil, fmt.Errorf("failed to create domain: %w", err)
	}
	return &domain, nil
}

// CloseDomain hides a domain from active views without deleting it.
func CloseDomain(id int) (*models.Domain, error) {
	return setDomainClosed(id, true)
}

// ReopenDomain makes a closed domain visible again.
func ReopenDomain(id int) (*models.Domain, error) {
	return setDomainClosed(id, false)
}

func setDomainClosed(id int, closed bool) (*models.Domain, error) {
	var domain models.Domain
	if err := DB.First(&domain, id).Error; err != nil {
		return nil, fmt.Errorf("domain #%d not found", id)
	}
	domain.Closed = closed
	if err := DB.Save(&domain).Error; err != nil {
		return nil, fmt.Errorf("failed to update domain #%d: %w", id, err)
	}
	return &domain, nil
}

// DeleteDomain removes a domain and cascades to its areas and their tasks.
func DeleteDomain(id int) error {
	res := DB.Delete(&models.Domain{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete domain #%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("domain #%d not found", id)
	}
	return nil
}

// CreateArea creates a sub-grouping, optionally filed under a domain.
// A nil domainFK leaves the area unfiled.
func CreateArea(name, creatorFK string, domainFK *int) (*models.Area, error) {
	if name == "" || utf8.RuneCountInString(name) > 32 {
		return nil, fmt.Errorf("area name must be 1-32 characters")
	}

	area := models.Area{
		AreaName:  name,
		DomainFK:  domainFK,
		CreatorFK: creatorFK,
		SortMode:  models.SortModePriority,
	}
	if err := DB.Create(&area).Error; err != nil {
		return nil, fmt.Errorf("failed to create area: %w", err)
	}
	return &area, nil
}

// AssignAreaDomain refiles an area under a domain, or unfiles it when
// domainFK is nil.
func AssignAreaDomain(areaID int, domainFK *int) (*models.Area, error) {
	var area models.Area
	if err := DB.First(&area, areaID).Error; err != nil {
		return nil, fmt.Errorf("area #%d not found", areaID)
	}
	area.DomainFK = domainFK
	if err := DB.Save(&area).Error; err != nil {
		return nil, fmt.Errorf("failed to update area #%d: %w", areaID, err)
	}
	return &area, nil
}

// SetAreaSortMode switches how the area's tasks are ordered.
func SetAreaSortMode(areaID int, mode string) (*models.Area, error) {
	if mode != models.SortModePriority && mode != models.SortModeHand {
		return nil, fmt.Errorf("invalid sort mode %q (want %q or %q)",
			mode, models.SortModePriority, models.SortModeHand)
	}
	var area models.Area
	if err := DB.First(&area, areaID).Error; err != nil {
		return nil, fmt.Errorf("area #%d not found", areaID)
	}
	area.SortMode = mode
	if err := DB.Save(&area).Error; err != nil {
		return nil, fmt.Errorf("failed to update area #%d: %w", areaID, err)
	}
	return &area, nil
}

// DeleteArea removes an area and cascades to its tasks.
func DeleteArea(id int) error {
	res := DB.Delete(&models.Area{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete area #%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("area #%d not found", id)
	}
	return nil
}
