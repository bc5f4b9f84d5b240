package config

import (
	"os"

	"github.com/go-yaml/yaml"
	"github.com/rs/zerolog/log"

	"github.com/finqube/claimflow/dto"
)

// CategoryConfig is one tenant-configured expense category with its policy
// limits.
type CategoryConfig struct {
	Code                 string `yaml:"code"`
	APICode              string `yaml:"api_code,omitempty"`
	Label                string `yaml:"label"`
	MaxAmount            string `yaml:"max_amount,omitempty"`
	SubmissionWindowDays int    `yaml:"submission_window_days,omitempty"`
	Description          string `yaml:"description,omitempty"`
}

type MasterConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// defaultCategories backs the service when no config file is present.
var defaultCategories = []CategoryConfig{
	{Code: "travel", APICode: "TRV", Label: "Travel", MaxAmount: "15000", SubmissionWindowDays: 30},
	{Code: "accommodation", APICode: "ACM", Label: "Accommodation", MaxAmount: "20000", SubmissionWindowDays: 30},
	{Code: "meals", APICode: "MLS", Label: "Meals", MaxAmount: "3000", SubmissionWindowDays: 15},
	{Code: "fuel", APICode: "FUL", Label: "Fuel", MaxAmount: "8000", SubmissionWindowDays: 30},
	{Code: "certification", APICode: "CRT", Label: "Certification", MaxAmount: "50000", SubmissionWindowDays: 60},
	{Code: "communication", APICode: "COM", Label: "Communication", MaxAmount: "2500", SubmissionWindowDays: 30},
	{Code: "medical", APICode: "MED", Label: "Medical", MaxAmount: "25000", SubmissionWindowDays: 90},
	{Code: "office_supplies", APICode: "OFS", Label: "Office Supplies", MaxAmount: "10000", SubmissionWindowDays: 30},
}

// InitConfig loads the category/policy file, falling back to the built-in
// defaults when the file is missing or empty.
func InitConfig(path string) *MasterConfig {
	c := &MasterConfig{}
	c.getConf(path)
	if len(c.Categories) == 0 {
		c.Categories = defaultCategories
	}
	return c
}

func (c *MasterConfig) getConf(path string) *MasterConfig {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("category config not readable, using defaults")
		return c
	}
	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("category config is malformed")
	}
	return c
}

// CategoryOptions returns the configured categories with the "Other"
// sentinel always appended last.
func (c *MasterConfig) CategoryOptions() []dto.CategoryOption {
	options := make([]dto.CategoryOption, 0, len(c.Categories)+1)
	for _, cat := range c.Categories {
		options = append(options, dto.CategoryOption{
			Code:                 cat.Code,
			APICode:              cat.APICode,
			Label:                cat.Label,
			MaxAmount:            cat.MaxAmount,
			SubmissionWindowDays: cat.SubmissionWindowDays,
			Description:          cat.Description,
		})
	}
	options = append(options, dto.CategoryOption{
		Code:        dto.CategoryOther,
		Label:       "Other",
		Description: "Expenses outside the configured policy categories",
	})
	return options
}

// Option looks up one category by code. Returns nil for unknown codes and
// for "other", which deliberately has no limits.
func (c *MasterConfig) Option(code string) *dto.CategoryOption {
	for _, opt := range c.CategoryOptions() {
		if opt.Code == code && opt.Code != dto.CategoryOther {
			o := opt
			return &o
		}
	}
	return nil
}
