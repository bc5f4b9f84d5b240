package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// OCRAPIClient calls the remote OCR HTTP service. It is tried before local
// Tesseract because the hosted models handle low-quality receipt photos
// better.
type OCRAPIClient struct {
	baseURL string
	http    *http.Client
}

func NewOCRAPIClient(baseURL string) *OCRAPIClient {
	return &OCRAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ExtractText sends image or PDF bytes to the OCR API and returns the
// recognized text.
func (c *OCRAPIClient) ExtractText(ctx context.Context, data []byte) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("OCR API not configured")
	}

	payload := map[string]interface{}{
		"images": []string{base64.StdEncoding.EncodeToString(data)},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict/ocr_system", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to build OCR API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call OCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results [][]struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode OCR API response: %w", err)
	}

	var textBuilder strings.Builder
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			textBuilder.WriteString(line.Text)
			textBuilder.WriteString("\n")
		}
	}

	extracted := textBuilder.String()
	if strings.TrimSpace(extracted) == "" {
		return "", fmt.Errorf("OCR API extracted no text")
	}

	log.Debug().Int("chars", len(extracted)).Msg("OCR API extraction done")
	return extracted, nil
}
