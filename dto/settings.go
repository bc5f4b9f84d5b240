package dto

// Settings sections are persisted as opaque-but-typed blobs keyed by section
// name; the service validates shape, not third-party semantics.

const (
	SettingsSlack    = "slack"
	SettingsTeams    = "teams"
	SettingsSSO      = "sso"
	SettingsHRMS     = "hrms"
	SettingsERP      = "erp"
	SettingsWebhooks = "webhooks"
	SettingsBranding = "branding"
)

// SlackSettings configures claim-event notifications to Slack.
type SlackSettings struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url"`
	Channel    string `json:"channel,omitempty"`
}

// TeamsSettings configures claim-event notifications to Microsoft Teams.
type TeamsSettings struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url"`
}

// SSOSettings stores identity-provider configuration.
type SSOSettings struct {
	Enabled     bool   `json:"enabled"`
	Provider    string `json:"provider,omitempty"`
	MetadataURL string `json:"metadata_url,omitempty"`
	EntityID    string `json:"entity_id,omitempty"`
}

// HRMSSettings stores the HR system sync endpoint.
type HRMSSettings struct {
	Enabled bool   `json:"enabled"`
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// ERPSettings stores the ERP export endpoint.
type ERPSettings struct {
	Enabled bool   `json:"enabled"`
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// WebhookSettings holds generic outbound webhooks fired on claim events.
type WebhookSettings struct {
	Endpoints []WebhookEndpoint `json:"endpoints"`
}

type WebhookEndpoint struct {
	URL     string   `json:"url"`
	Secret  string   `json:"secret,omitempty"`
	Events  []string `json:"events,omitempty"`
	Enabled bool     `json:"enabled"`
}

// BrandingSettings is tenant display configuration.
type BrandingSettings struct {
	CompanyName  string `json:"company_name,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	PrimaryColor string `json:"primary_color,omitempty"`
	Currency     string `json:"currency,omitempty"`
	DateFormat   string `json:"date_format,omitempty"`
}
