package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/finqube/claimflow/dto"
)

const minBlockLength = 50

// separatorPatterns signal that a document holds more than one receipt.
// Two or more hits across all patterns switch the splitter to multi mode.
var separatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\breceipt\s*(?:no\.?|number|#)\s*[:#]?\s*\S+`),
	regexp.MustCompile(`(?i)\b(?:invoice|bill)\s*(?:no\.?|number|#)\s*[:#]?\s*\S+`),
	regexp.MustCompile(`(?i)\border\s*(?:id|no\.?|number|#)\s*[:#]?\s*\S+`),
	regexp.MustCompile(`(?i)\btransaction\s*(?:id|no\.?|ref)\s*[:#]?\s*\S+`),
	regexp.MustCompile(`(?m)^[-=]{5,}\s*$`),
}

// Blocks are cut where a new receipt/invoice/bill number header begins.
var blockBoundary = regexp.MustCompile(`(?i)\b(?:receipt|invoice|bill)\s*(?:no\.?|number|#)\s*[:#]?\s*\S+`)

func countSeparators(text string) int {
	total := 0
	for _, re := range separatorPatterns {
		total += len(re.FindAllString(text, -1))
	}
	return total
}

// SplitReceipts decides whether raw text holds one receipt or several and
// produces one ExtractedClaim per detected receipt. Single-receipt texts
// yield at most one record, kept only when at least one of amount, vendor or
// date was found.
func SplitReceipts(text string) []dto.ExtractedClaim {
	if countSeparators(text) >= 2 {
		return splitMulti(text)
	}

	fields := ExtractFields(text)
	if fields.Amount == "" && fields.Vendor == "" && fields.Date == "" {
		return nil
	}
	return []dto.ExtractedClaim{newExtractedClaim(text, fields)}
}

func splitMulti(text string) []dto.ExtractedClaim {
	var claims []dto.ExtractedClaim
	for _, block := range splitBlocks(text) {
		if len(strings.TrimSpace(block)) < minBlockLength {
			continue
		}
		fields := ExtractFields(block)
		if fields.Amount == "" {
			continue
		}
		claims = append(claims, newExtractedClaim(block, fields))
	}
	return claims
}

func splitBlocks(text string) []string {
	starts := blockBoundary.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return []string{text}
	}

	var blocks []string
	if starts[0][0] > 0 {
		blocks = append(blocks, text[:starts[0][0]])
	}
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		blocks = append(blocks, text[loc[0]:end])
	}
	return blocks
}

func newExtractedClaim(block string, fields FieldResult) dto.ExtractedClaim {
	category := DetectCategory(block)
	claim := dto.ExtractedClaim{
		ID:           uuid.NewString(),
		Selected:     true,
		Category:     category,
		Title:        fields.Title,
		Amount:       fields.Amount,
		Date:         fields.Date,
		Vendor:       fields.Vendor,
		RawText:      snippet(block),
		FieldSources: make(map[string]dto.FieldSource),
	}

	sources := map[string]string{
		dto.FieldAmount: fields.Amount,
		dto.FieldDate:   fields.Date,
		dto.FieldVendor: fields.Vendor,
		dto.FieldTitle:  fields.Title,
	}
	for field, value := range sources {
		if value != "" {
			claim.FieldSources[field] = dto.SourceAuto
		} else {
			claim.FieldSources[field] = dto.SourceManual
		}
	}
	if category != "other" {
		claim.FieldSources[dto.FieldCategory] = dto.SourceAuto
	} else {
		claim.FieldSources[dto.FieldCategory] = dto.SourceManual
	}
	claim.FieldSources[dto.FieldDescription] = dto.SourceManual
	claim.FieldSources[dto.FieldTransactionRef] = dto.SourceManual
	claim.FieldSources[dto.FieldProjectCode] = dto.SourceManual

	return claim
}

func snippet(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 200 {
		return trimmed[:200]
	}
	return trimmed
}
