// Package tika provides Apache Tika integration for resume text extraction.
//
// It extracts text content from various document formats including
// PDF, Word, and plain text files.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abiads/talentscout/internal/domain"
	"github.com/Abiads/talentscout/pkg/textx"
)

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
// It performs PUT /tika with Accept: text/plain to retrieve extracted text.
// See: https://tika.apache.org/server/ for API details.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ExtractPath uploads the file at path to the Tika server and returns plain text.
func (c *Client) ExtractPath(ctx context.Context, fileName, path string) (string, error) {
	// Uploaded resumes are written to the system temp dir; constrain reads to
	// there (or the working dir) unless tests opt out via env.
	var openPath string
	if os.Getenv("TIKA_ALLOW_ABSPATHS") != "1" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		abs = filepath.Clean(abs)
		tmp := filepath.Clean(os.TempDir())
		wd, _ := os.Getwd()
		wd = filepath.Clean(wd)
		switch {
		case strings.HasPrefix(abs, tmp+string(os.PathSeparator)) || abs == tmp:
			openPath = abs
		case strings.HasPrefix(abs, wd+string(os.PathSeparator)) || abs == wd:
			openPath = abs
		default:
			return "", fmt.Errorf("op=tika.ExtractPath: disallowed path %s: %w", abs, domain.ErrInvalidArgument)
		}
	} else {
		if abs, err := filepath.Abs(path); err == nil {
			openPath = filepath.Clean(abs)
		} else {
			openPath = path
		}
	}
	bfile, err := os.ReadFile(openPath)
	if err != nil {
		return "", fmt.Errorf("op=tika.ExtractPath: %w", err)
	}

	u := c.baseURL
	if u == "" {
		u = "http://localhost:9998"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u+"/tika", bytes.NewReader(bfile))
	if err != nil {
		return "", fmt.Errorf("op=tika.ExtractPath: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if ct := contentTypeFromExt(filepath.Ext(fileName)); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("op=tika.ExtractPath: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("op=tika.ExtractPath: tika status %d: %w", resp.StatusCode, domain.ErrInternal)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("op=tika.ExtractPath: %w", err)
	}
	// Sanitize control characters, then collapse all whitespace to single spaces.
	sanitized := textx.SanitizeText(string(b))
	return strings.Join(strings.Fields(sanitized), " "), nil
}

func contentTypeFromExt(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		if ext != "" {
			return mime.TypeByExtension(ext)
		}
	}
	return ""
}
