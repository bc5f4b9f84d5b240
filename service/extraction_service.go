package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"mime/multipart"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/rs/zerolog/log"

	"github.com/finqube/claimflow/config"
	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/prom"
	"github.com/finqube/claimflow/utils"
)

// RemoteOCR is the hosted OCR API, tried before local Tesseract.
type RemoteOCR interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// ImageOCR is the local Tesseract fallback.
type ImageOCR interface {
	ExtractTextAndQualityFromFile(fileHeader *multipart.FileHeader) (string, float64, error)
	ExtractTextAndQuality(filePath string) (string, float64, error)
}

// ReceiptStructurer turns raw OCR text into structured receipts. The regex
// heuristics take over when it fails or finds nothing.
type ReceiptStructurer interface {
	StructureReceipts(ctx context.Context, text string, categories []string) ([]dto.ReceiptData, error)
}

// ExtractionService runs the document pipeline: text extraction (PDF or
// OCR), LLM structuring with heuristic fallback, QR transaction-ref scan.
type ExtractionService struct {
	remote    RemoteOCR
	tesseract ImageOCR
	pdf       PDFProcessor
	llm       ReceiptStructurer
	cfg       *config.MasterConfig

	// processed caches results by content hash so that navigating back and
	// forth through the wizard never re-runs OCR for the same file.
	mu        sync.Mutex
	processed map[string]*dto.ExtractResponse
}

func NewExtractionService(remote RemoteOCR, tesseract ImageOCR, pdf PDFProcessor, llm ReceiptStructurer, cfg *config.MasterConfig) *ExtractionService {
	return &ExtractionService{
		remote:    remote,
		tesseract: tesseract,
		pdf:       pdf,
		llm:       llm,
		cfg:       cfg,
		processed: make(map[string]*dto.ExtractResponse),
	}
}

// ProcessDocument extracts claims from one uploaded receipt document.
func (s *ExtractionService) ProcessDocument(ctx context.Context, fileHeader *multipart.FileHeader, data []byte) (*dto.ExtractResponse, error) {
	started := time.Now()
	defer func() { prom.ExtractionSeconds.Observe(time.Since(started).Seconds()) }()

	hash := contentHash(data)
	s.mu.Lock()
	if cached, ok := s.processed[hash]; ok {
		s.mu.Unlock()
		log.Debug().Str("file", fileHeader.Filename).Msg("document already processed, returning cached result")
		return cached, nil
	}
	s.mu.Unlock()

	isPDF := strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf")

	var text string
	var quality dto.DocumentQuality
	var pageImages []image.Image

	if isPDF {
		text, quality, pageImages = s.extractFromPDF(data)
	} else {
		text, quality = s.extractFromImage(ctx, fileHeader, data)
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			pageImages = append(pageImages, img)
		}
	}

	if strings.TrimSpace(text) == "" {
		prom.ExtractionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("no text could be extracted from %s", fileHeader.Filename)
	}

	claims, receipts, outcome := s.structureClaims(ctx, text)
	prom.ExtractionsTotal.WithLabelValues(outcome).Inc()

	// A QR code on the receipt usually carries the transaction reference.
	if ref := firstQRText(pageImages); ref != "" {
		for i := range claims {
			if claims[i].TransactionRef == "" {
				claims[i].TransactionRef = ref
				claims[i].FieldSources[dto.FieldTransactionRef] = dto.SourceAuto
			}
		}
	}

	resp := &dto.ExtractResponse{
		DocumentID: hash,
		Claims:     claims,
		OCR: dto.OCRResult{
			Text:         text,
			Receipts:     receipts,
			ReceiptCount: len(claims),
		},
		Quality:     quality,
		ProcessedAt: time.Now().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.processed[hash] = resp
	s.mu.Unlock()

	return resp, nil
}

// Reset clears the processed-document cache. Called when all uploads are
// removed so a re-upload triggers a fresh extraction.
func (s *ExtractionService) Reset() {
	s.mu.Lock()
	s.processed = make(map[string]*dto.ExtractResponse)
	s.mu.Unlock()
}

func (s *ExtractionService) extractFromPDF(data []byte) (string, dto.DocumentQuality, []image.Image) {
	var quality dto.DocumentQuality

	text, err := s.pdf.ExtractText(data)
	if err != nil {
		log.Warn().Err(err).Msg("pdf text extraction failed")
		quality.Issues = append(quality.Issues, "pdf_text_extraction_failed")
	}

	images, imgErr := s.pdf.ExtractImages(data)
	if imgErr != nil {
		log.Debug().Err(imgErr).Msg("pdf image extraction failed")
	}

	if evaluateTextQuality(text) >= 50 {
		quality.OcrConfidence = 100.0
		quality.FinalScore = 100.0
		return text, quality, images
	}

	// Scanned PDF: OCR each page image and aggregate.
	if len(images) == 0 {
		quality.Issues = append(quality.Issues, "pdf_image_extraction_failed")
		return text, quality, nil
	}

	var combined strings.Builder
	var totalConfidence float64
	var ocredPages int

	for _, img := range images {
		tempImg, err := saveImageToTempFile(img)
		if err != nil {
			log.Warn().Err(err).Msg("failed to save page image for OCR")
			continue
		}

		pageText, pageConf, ocrErr := s.tesseract.ExtractTextAndQuality(tempImg)
		os.Remove(tempImg)
		if ocrErr != nil {
			log.Warn().Err(ocrErr).Msg("page OCR failed")
			continue
		}

		combined.WriteString(pageText)
		combined.WriteString("\n")
		totalConfidence += pageConf
		ocredPages++
	}

	if ocredPages == 0 {
		quality.Issues = append(quality.Issues, "scanned_pdf_ocr_failed")
		return text, quality, images
	}

	quality.OcrConfidence = totalConfidence / float64(ocredPages)
	quality.FinalScore = quality.OcrConfidence
	if quality.FinalScore < 60 {
		quality.Issues = append(quality.Issues, "low_quality_document")
	}
	return combined.String(), quality, images
}

func (s *ExtractionService) extractFromImage(ctx context.Context, fileHeader *multipart.FileHeader, data []byte) (string, dto.DocumentQuality) {
	var quality dto.DocumentQuality

	if s.remote != nil {
		remoteText, err := s.remote.ExtractText(ctx, data)
		if err == nil && len(strings.TrimSpace(remoteText)) > 5 {
			quality.OcrConfidence = 75.0
			quality.FinalScore = 75.0
			return remoteText, quality
		}
		if err != nil {
			log.Warn().Err(err).Msg("remote OCR failed, falling back to tesseract")
		}
	}

	text, conf, err := s.tesseract.ExtractTextAndQualityFromFile(fileHeader)
	if err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("image OCR failed")
		quality.Issues = append(quality.Issues, "image_ocr_failed")
		return "", quality
	}

	quality.OcrConfidence = conf
	quality.FinalScore = conf
	if quality.FinalScore < 60 {
		quality.Issues = append(quality.Issues, "low_quality_document")
	}
	return text, quality
}

// structureClaims prefers the LLM and falls back to the regex splitter.
func (s *ExtractionService) structureClaims(ctx context.Context, text string) ([]dto.ExtractedClaim, []dto.ReceiptData, string) {
	options := s.cfg.CategoryOptions()

	if s.llm != nil {
		codes := make([]string, 0, len(options))
		for _, opt := range options {
			codes = append(codes, opt.Code)
		}
		receipts, err := s.llm.StructureReceipts(ctx, text, codes)
		if err != nil {
			log.Warn().Err(err).Msg("LLM structuring failed, using heuristics")
		} else if len(receipts) > 0 {
			return s.claimsFromReceipts(receipts, options), receipts, "llm"
		}
	}

	claims := utils.SplitReceipts(text)
	if len(claims) == 0 {
		return nil, nil, "empty"
	}
	for i := range claims {
		normalized := utils.NormalizeCategory(claims[i].Category, options)
		if normalized == claims[i].Category {
			continue
		}
		// Normalization changed the detected category, so the derived title
		// and the category provenance must follow.
		claims[i].Category = normalized
		claims[i].Title = utils.BuildTitle(normalized, claims[i].Vendor, claims[i].Amount)
		if normalized == dto.CategoryOther {
			claims[i].FieldSources[dto.FieldCategory] = dto.SourceManual
		}
	}
	return claims, nil, "heuristic"
}

func (s *ExtractionService) claimsFromReceipts(receipts []dto.ReceiptData, options []dto.CategoryOption) []dto.ExtractedClaim {
	claims := make([]dto.ExtractedClaim, 0, len(receipts))
	for _, r := range receipts {
		category := utils.NormalizeCategory(r.Category, options)
		if category == dto.CategoryOther && r.Description != "" {
			category = utils.NormalizeCategory(utils.DetectCategory(r.Description), options)
		}

		amount := strings.ReplaceAll(r.Amount, ",", "")
		claim := dto.ExtractedClaim{
			ID:             newClaimID(),
			Selected:       true,
			Category:       category,
			Title:          utils.BuildTitle(category, r.Vendor, amount),
			Amount:         amount,
			Date:           r.Date,
			Vendor:         r.Vendor,
			Description:    r.Description,
			TransactionRef: r.TransactionRef,
			FieldSources:   make(map[string]dto.FieldSource),
		}

		values := map[string]string{
			dto.FieldCategory:       category,
			dto.FieldTitle:          claim.Title,
			dto.FieldAmount:         amount,
			dto.FieldDate:           r.Date,
			dto.FieldVendor:         r.Vendor,
			dto.FieldDescription:    r.Description,
			dto.FieldTransactionRef: r.TransactionRef,
		}
		for field, value := range values {
			if value != "" {
				claim.FieldSources[field] = dto.SourceAuto
			} else {
				claim.FieldSources[field] = dto.SourceManual
			}
		}
		claim.FieldSources[dto.FieldProjectCode] = dto.SourceManual

		claims = append(claims, claim)
	}
	return claims
}

// firstQRText decodes the first readable QR code across the page images.
func firstQRText(images []image.Image) string {
	reader := qrcode.NewQRCodeReader()
	for _, img := range images {
		bmp, err := gozxing.NewBinaryBitmapFromImage(img)
		if err != nil {
			continue
		}
		result, err := reader.Decode(bmp, nil)
		if err != nil || result == nil {
			continue
		}
		text := strings.TrimSpace(result.GetText())
		if text != "" && len(text) <= 64 && !strings.ContainsAny(text, " \n") {
			return text
		}
	}
	return ""
}

// evaluateTextQuality scores extracted text 0-100 from its length and the
// presence of receipt keywords; low scores push PDFs onto the OCR path.
func evaluateTextQuality(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0.0
	}

	score := 0.0

	textLen := len(strings.TrimSpace(text))
	if textLen > 500 {
		score += 40.0
	} else if textLen > 100 {
		score += 20.0
	} else if textLen > 20 {
		score += 10.0
	}

	keywords := []string{
		"total", "receipt", "invoice", "amount", "tax", "gst",
		"date", "paid", "thank",
	}

	textLower := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(textLower, keyword) {
			score += 6.67
		}
	}

	if score > 100.0 {
		score = 100.0
	}

	return score
}

func newClaimID() string {
	return uuid.NewString()
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// saveImageToTempFile saves an image.Image to a temporary PNG file.
func saveImageToTempFile(img image.Image) (string, error) {
	tempFile, err := os.CreateTemp("", "receipt-page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer tempFile.Close()

	if err := png.Encode(tempFile, img); err != nil {
		return "", fmt.Errorf("failed to encode image to PNG: %w", err)
	}

	return tempFile.Name(), nil
}
