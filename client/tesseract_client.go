package client

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// TesseractClient runs local OCR over receipt images. It is the fallback
// when the remote OCR API is unavailable or returns too little text.
type TesseractClient struct {
	dataPath string
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
	}
}

// ExtractTextAndQualityFromFile extracts text plus an average word
// confidence from an uploaded receipt.
func (tc *TesseractClient) ExtractTextAndQualityFromFile(fileHeader *multipart.FileHeader) (string, float64, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tempFile, err := tc.CreateTempFile(file, fileHeader.Filename)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile)

	return tc.ExtractTextAndQuality(tempFile)
}

// CreateTempFile creates a temporary file from uploaded content
func (tc *TesseractClient) CreateTempFile(file multipart.File, filename string) (string, error) {
	ext := filepath.Ext(filename)
	tempFile, err := os.CreateTemp("", "receipt-*"+ext)
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, file); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}

	return tempFile.Name(), nil
}

// ExtractTextAndQuality runs Tesseract on an image file on disk.
func (tc *TesseractClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	client.SetTessdataPrefix(tc.dataPath)
	if err := client.SetLanguage("eng"); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImage(filePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Confidence is best-effort; the text is still usable.
		return text, 0, nil
	}

	var totalConf float64
	var count int
	for _, box := range boxes {
		totalConf += box.Confidence
		count++
	}

	avgConf := 0.0
	if count > 0 {
		avgConf = totalConf / float64(count)
	}

	return text, avgConf, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Debug().Msg("tesseract client closed")
}
