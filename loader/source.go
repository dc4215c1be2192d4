package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source fetches a JSON document and decodes it into v.
type Source interface {
	Load(ctx context.Context, v any) error
}

// HTTPSource loads a JSON document with a GET request.
type HTTPSource struct {
	URL string

	// Client performs the request. Defaults to http.DefaultClient.
	Client *http.Client
}

// Load fetches s.URL and decodes the body into v. A non-2xx status
// fails with ErrUnexpectedStatus.
func (s HTTPSource) Load(ctx context.Context, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return fmt.Errorf("loader: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("loader: fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, s.URL, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("loader: decode %s: %w", s.URL, err)
	}

	return nil
}

// FileSource loads a document from disk. Files ending in .yaml or .yml
// are read as YAML; everything else as JSON.
type FileSource struct {
	Path string
}

// Load reads s.Path and decodes it into v.
func (s FileSource) Load(_ context.Context, v any) error {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return fmt.Errorf("loader: decode %s: %w", s.Path, err)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("loader: decode %s: %w", s.Path, err)
	}

	return nil
}

// BytesSource is an inline JSON document, such as a blob embedded in a
// rendered page.
type BytesSource []byte

// Load decodes the document into v.
func (s BytesSource) Load(_ context.Context, v any) error {
	if err := json.Unmarshal(s, v); err != nil {
		return fmt.Errorf("loader: decode inline document: %w", err)
	}
	return nil
}

// yamlToJSON re-encodes a YAML document as JSON so targets only need
// to implement json.Unmarshaler.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return json.Marshal(doc)
}
