package handlers

import (
	"github.com/gofiber/fiber/v3"

	"sovdash/internal/config"
)

// BrandingData contains site branding information for templates.
type BrandingData struct {
	AppName      string
	AppVersion   string
	PrimaryBrand string
}

// GetBrandingData returns branding data for template rendering.
func GetBrandingData(cfg *config.Config, brands *config.YAMLConfig) BrandingData {
	return BrandingData{
		AppName:      cfg.AppName,
		AppVersion:   cfg.AppVersion,
		PrimaryBrand: brands.Brand.Name,
	}
}

// MergeBranding adds branding data to a fiber.Map for template rendering.
func MergeBranding(data fiber.Map, cfg *config.Config, brands *config.YAMLConfig) fiber.Map {
	branding := GetBrandingData(cfg, brands)
	data["AppName"] = branding.AppName
	data["AppVersion"] = branding.AppVersion
	data["PrimaryBrand"] = branding.PrimaryBrand
	return data
}
