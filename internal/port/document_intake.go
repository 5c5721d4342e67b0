package port

import "context"

// DocumentIntake abstracts the external document processing toolchain:
// DOCX to PDF conversion, text extraction, and page rasterization.
type DocumentIntake interface {
	// ConvertToPDF converts a DOCX file to PDF and returns the output path.
	ConvertToPDF(ctx context.Context, docxPath, outDir string) (string, error)
	// ExtractText extracts plain text from a PDF. Empty output is not an
	// error; scanned documents legitimately yield no text layer.
	ExtractText(ctx context.Context, pdfPath string) (string, error)
	// ExtractPageImages rasterizes PDF pages and returns them as ordered
	// base64-encoded PNG payloads.
	ExtractPageImages(ctx context.Context, pdfPath string) ([]string, error)
}
