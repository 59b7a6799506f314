package util

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/gen2brain/go-fitz"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"
)

var ErrNoResumeFile = errors.New("no valid resume file (.pdf or .docx) found in the directory")

// DocumentExtractor finds the résumé inside an upload directory and returns its plain text.
type DocumentExtractor struct {
	logger *zap.Logger
	// OCR enables the tesseract fallback for PDFs without a text layer.
	OCR bool
}

func NewDocumentExtractor(log *zap.Logger) *DocumentExtractor {
	return &DocumentExtractor{logger: logger.OrNop(log), OCR: true}
}

// ExtractResume returns the text of the first .pdf or .docx file in dir
// (entries are visited in name order).
func (e *DocumentExtractor) ExtractResume(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory not found: %s", dir)
		}
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf":
			text, err := e.extractPDF(path)
			if err != nil {
				return "", fmt.Errorf("failed to read PDF '%s': %w", name, err)
			}
			return text, nil
		case ".docx":
			text, err := extractDocx(path)
			if err != nil {
				return "", fmt.Errorf("failed to read DOCX '%s': %w", name, err)
			}
			return text, nil
		}
	}

	return "", ErrNoResumeFile
}

func (e *DocumentExtractor) extractPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var fullText strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			e.logger.Warn("pdf page text extraction failed", zap.Int("page", n+1), zap.Error(err))
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			fullText.WriteString(text)
			fullText.WriteString("\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result != "" || !e.OCR {
		return result, nil
	}

	e.logger.Info("pdf has no text layer, falling back to OCR", zap.String("file", filepath.Base(path)))
	return e.extractPDFOCR(doc)
}

// extractPDFOCR renders every page and runs tesseract over it.
func (e *DocumentExtractor) extractPDFOCR(doc *fitz.Document) (string, error) {
	if err := checkTesseract(); err != nil {
		return "", fmt.Errorf("tesseract check failed: %w", err)
	}

	var fullText bytes.Buffer
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
			e.logger.Warn("ocr page failed", zap.Error(lastErr))
			continue
		}

		pageText, err := ocrImage(img)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			e.logger.Warn("ocr page failed", zap.Error(lastErr))
			continue
		}

		e.logger.Debug("ocr page", zap.Int("page", n+1), zap.Int("chars", len(pageText)))
		if len(pageText) > 0 {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" && lastErr != nil {
		return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
	}
	return result, nil
}

func ocrImage(img image.Image) (string, error) {
	tmpFile, err := os.CreateTemp("", "page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, img); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to write PNG: %w", err)
	}

	out, err := exec.Command("tesseract", tmpPath, "stdout", "-l", "eng").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract error: %w, output: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

func checkTesseract() error {
	out, err := exec.Command("tesseract", "-v").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w\nOutput: %s", err, string(out))
	}
	return nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
	blankLines       = regexp.MustCompile(`\n\s*\n+`)
)

func extractDocx(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return docxXMLToText(r.Editable().GetContent()), nil
}

// docxXMLToText flattens WordprocessingML into plain text, one paragraph per line.
func docxXMLToText(content string) string {
	text := docxParagraphEnd.ReplaceAllStringFunc(content, func(m string) string {
		if m == "<w:tab/>" {
			return "\t"
		}
		return "\n"
	})
	text = xmlTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankLines.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
