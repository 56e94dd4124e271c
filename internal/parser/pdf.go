package parser

import (
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"sec-filing-rag/internal/models"
)

// LoadPDF reads a PDF file and returns per-page plain text, 1-based.
// A page whose text extraction fails is kept with empty text so page
// numbering stays aligned with the source document.
func LoadPDF(filePath string) ([]models.Page, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var pages []models.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			text, err = page.GetPlainText(nil)
			if err != nil {
				log.Warn().Err(err).Int("page", i).Str("file", filePath).Msg("Failed to extract page text")
				text = ""
			}
		}
		pages = append(pages, models.Page{Number: i, Text: text})
	}
	return pages, nil
}
