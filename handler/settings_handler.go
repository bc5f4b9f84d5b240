package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/storage"
)

// SettingsHandler serves the per-section integration settings CRUD.
type SettingsHandler struct {
	store storage.Store
}

func NewSettingsHandler(store storage.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Get handles GET /api/v1/settings/:section. Unsaved sections return an
// empty object rather than 404 so the settings UI can render defaults.
func (h *SettingsHandler) Get(c *gin.Context) {
	section := c.Param("section")
	if !validSection(section) {
		sendError(c, http.StatusBadRequest, "SETTINGS_FAILED", fmt.Sprintf("unknown settings section %q", section), nil)
		return
	}

	raw, err := h.store.GetSettings(section)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		sendError(c, http.StatusInternalServerError, "SETTINGS_FAILED", "Failed to load settings", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// Put handles PUT /api/v1/settings/:section. The body must match the
// section's schema; unknown sections are rejected.
func (h *SettingsHandler) Put(c *gin.Context) {
	section := c.Param("section")
	if !validSection(section) {
		sendError(c, http.StatusBadRequest, "SETTINGS_FAILED", fmt.Sprintf("unknown settings section %q", section), nil)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		sendError(c, http.StatusBadRequest, "SETTINGS_FAILED", "Failed to read request body", err)
		return
	}
	if err := validateSection(section, raw); err != nil {
		sendError(c, http.StatusBadRequest, "SETTINGS_FAILED", "Settings body does not match section schema", err)
		return
	}

	if err := h.store.SaveSettings(section, raw); err != nil {
		sendError(c, http.StatusInternalServerError, "SETTINGS_FAILED", "Failed to save settings", err)
		return
	}

	log.Info().Str("section", section).Msg("settings updated")
	c.Data(http.StatusOK, "application/json", raw)
}

func validSection(section string) bool {
	switch section {
	case dto.SettingsSlack, dto.SettingsTeams, dto.SettingsSSO,
		dto.SettingsHRMS, dto.SettingsERP, dto.SettingsWebhooks, dto.SettingsBranding:
		return true
	}
	return false
}

// validateSection decodes the body into the section's typed struct with
// unknown fields rejected, so a Teams payload cannot land in the Slack slot.
func validateSection(section string, raw []byte) error {
	var target any
	switch section {
	case dto.SettingsSlack:
		target = &dto.SlackSettings{}
	case dto.SettingsTeams:
		target = &dto.TeamsSettings{}
	case dto.SettingsSSO:
		target = &dto.SSOSettings{}
	case dto.SettingsHRMS:
		target = &dto.HRMSSettings{}
	case dto.SettingsERP:
		target = &dto.ERPSettings{}
	case dto.SettingsWebhooks:
		target = &dto.WebhookSettings{}
	case dto.SettingsBranding:
		target = &dto.BrandingSettings{}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
