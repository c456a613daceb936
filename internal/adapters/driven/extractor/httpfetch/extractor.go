// Package httpfetch provides a text extractor that downloads issuer
// documents over HTTP and converts them to plain text. The exchange
// publishes PDFs almost exclusively, with the occasional HTML notice.
package httpfetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultTimeout = 120 * time.Second

	// DefaultMaxBytes bounds the download size. Audit PDFs run a few
	// megabytes; anything past this is not a disclosure document.
	DefaultMaxBytes = 50 << 20
)

// Config holds configuration for the extractor.
type Config struct {
	// Timeout is the per-download timeout.
	Timeout time.Duration

	// MaxBytes caps the downloaded size.
	MaxBytes int64
}

// Extractor downloads a document and returns its plain text.
type Extractor struct {
	client   *http.Client
	maxBytes int64
}

// New creates an extractor.
func New(cfg Config) *Extractor {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}

	return &Extractor{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxBytes: cfg.MaxBytes,
	}
}

// Extract fetches the document at url and returns its text. The
// format is decided by content type, falling back to the URL suffix.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "pdf") || strings.HasSuffix(strings.ToLower(url), ".pdf"):
		return extractPDF(data)
	case strings.Contains(contentType, "html"):
		return extractHTML(data)
	default:
		return string(data), nil
	}
}

// extractPDF pulls the text layer out of a PDF. Scanned documents
// without a text layer yield an empty string, which ingestion treats
// as a document with nothing to index.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// extractHTML strips markup and returns the visible text.
func extractHTML(data []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.TrimSpace(sb.String()), nil
}
