// Package intake drives the external document toolchain: LibreOffice for
// DOCX conversion, poppler's pdftotext and pdftoppm for text extraction and
// page rasterization.
package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"workwise/internal/config"
)

// Toolchain implements port.DocumentIntake over local subprocess tools.
type Toolchain struct {
	dpi      int
	maxPages int
	workDir  string

	sofficeOK  bool
	pdftotext  bool
	pdftoppmOK bool
}

// NewToolchain probes the required binaries once at construction. A missing
// tool is not fatal: the affected extraction path degrades and the analysis
// pipeline falls back to the other mode.
func NewToolchain(cfg *config.IntakeConfig) *Toolchain {
	t := &Toolchain{
		dpi:      cfg.DPI,
		maxPages: cfg.MaxPages,
		workDir:  cfg.WorkDir,
	}
	if t.dpi <= 0 {
		t.dpi = 150
	}
	if t.maxPages <= 0 {
		t.maxPages = 30
	}
	if t.workDir == "" {
		t.workDir = os.TempDir()
	}

	t.sofficeOK = lookTool("soffice", "libreoffice")
	t.pdftotext = lookTool("pdftotext")
	t.pdftoppmOK = lookTool("pdftoppm")

	if !t.sofficeOK {
		log.Printf("intake.Toolchain: libreoffice not found, DOCX conversion disabled")
	}
	if !t.pdftotext {
		log.Printf("intake.Toolchain: pdftotext not found, text extraction disabled")
	}
	if !t.pdftoppmOK {
		log.Printf("intake.Toolchain: pdftoppm not found, page rasterization disabled")
	}
	return t
}

func lookTool(names ...string) bool {
	for _, name := range names {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// ConvertToPDF converts a DOCX file to PDF via headless LibreOffice and
// returns the path of the produced file inside outDir.
func (t *Toolchain) ConvertToPDF(ctx context.Context, docxPath, outDir string) (string, error) {
	if !t.sofficeOK {
		return "", fmt.Errorf("docx conversion unavailable: libreoffice not installed")
	}

	bin := "soffice"
	if _, err := exec.LookPath(bin); err != nil {
		bin = "libreoffice"
	}
	cmd := exec.CommandContext(ctx, bin,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("converting %s to pdf: %w (%s)", filepath.Base(docxPath), err, strings.TrimSpace(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	outPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("conversion produced no output for %s: %w", filepath.Base(docxPath), err)
	}
	return outPath, nil
}

// ExtractText pulls the text layer out of a PDF. Empty output is returned
// as-is; scanned documents legitimately have no text layer.
func (t *Toolchain) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if !t.pdftotext {
		return "", nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", pdfPath, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("extracting text from %s: %w (%s)", filepath.Base(pdfPath), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ExtractPageImages rasterizes up to maxPages pages at the configured DPI
// and returns them as ordered base64 PNG payloads.
func (t *Toolchain) ExtractPageImages(ctx context.Context, pdfPath string) ([]string, error) {
	if !t.pdftoppmOK {
		return nil, fmt.Errorf("page rasterization unavailable: pdftoppm not installed")
	}

	tmpDir, err := os.MkdirTemp(t.workDir, "workwise-pages-*")
	if err != nil {
		return nil, fmt.Errorf("creating page directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-r", fmt.Sprintf("%d", t.dpi),
		"-f", "1",
		"-l", fmt.Sprintf("%d", t.maxPages),
		pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w (%s)", filepath.Base(pdfPath), err, strings.TrimSpace(stderr.String()))
	}

	entries, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("listing rendered pages: %w", err)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(entries)

	images := make([]string, 0, len(entries))
	for _, path := range entries {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rendered page %s: %w", filepath.Base(path), err)
		}
		images = append(images, base64.StdEncoding.EncodeToString(data))
	}
	return images, nil
}
