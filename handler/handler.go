// Package handler exposes the claims, extraction, wizard and settings APIs
// over gin.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/finqube/claimflow/dto"
)

// sendError writes a structured error response.
func sendError(c *gin.Context, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Warn().Err(err).Str("path", c.FullPath()).Msg(message)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}
