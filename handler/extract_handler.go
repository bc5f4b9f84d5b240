package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/service"
)

// ExtractHandler handles receipt document uploads.
type ExtractHandler struct {
	extraction *service.ExtractionService
	wizard     *service.WizardService
}

func NewExtractHandler(extraction *service.ExtractionService, wizard *service.WizardService) *ExtractHandler {
	return &ExtractHandler{
		extraction: extraction,
		wizard:     wizard,
	}
}

// Extract handles POST /api/v1/documents/extract. Accepts one or more files
// under files[]; when session_id is given the extracted rows are attached to
// that wizard session.
func (h *ExtractHandler) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, http.StatusBadRequest, "DOCUMENT_EXTRACTION_FAILED", "Failed to parse multipart form", err)
		return
	}

	request := &dto.ExtractRequest{
		Files:      form.File["files[]"],
		EmployeeID: c.PostForm("employee_id"),
	}
	if err := request.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "DOCUMENT_EXTRACTION_FAILED", err.Error(), err)
		return
	}
	sessionID := c.PostForm("session_id")

	log.Info().Int("files", len(request.Files)).Msg("processing document extraction request")

	responses := make([]*dto.ExtractResponse, 0, len(request.Files))
	for _, fileHeader := range request.Files {
		file, err := fileHeader.Open()
		if err != nil {
			sendError(c, http.StatusBadRequest, "DOCUMENT_EXTRACTION_FAILED", "Failed to open uploaded file", err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			sendError(c, http.StatusBadRequest, "DOCUMENT_EXTRACTION_FAILED", "Failed to read uploaded file", err)
			return
		}

		resp, err := h.extraction.ProcessDocument(c.Request.Context(), fileHeader, data)
		if err != nil {
			sendError(c, http.StatusInternalServerError, "DOCUMENT_EXTRACTION_FAILED", "Failed to extract document", err)
			return
		}
		responses = append(responses, resp)

		if sessionID != "" {
			if _, err := h.wizard.AttachExtraction(sessionID, resp.DocumentID, resp.Claims); err != nil {
				sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Wizard session not found", err)
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"documents": responses})
}
