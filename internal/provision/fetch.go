package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Template placeholder tokens. Substitution is plain substring replacement
// with no escaping; templates must not use these byte sequences for anything
// else.
const (
	TokenProject = "__PROJECT_NAME__"
	TokenPort    = "__PORT__"
)

// DefaultTemplateBaseURL is where raw template content is fetched from,
// keyed by template name.
const DefaultTemplateBaseURL = "https://raw.githubusercontent.com/cocodex/cocodex/main/templates"

// Fetcher retrieves raw template content by name.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFetcher returns a Fetcher against the default template endpoint.
func NewFetcher() *Fetcher {
	return &Fetcher{
		BaseURL: DefaultTemplateBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads one template. Any failure is returned as-is; the caller
// treats fetch errors as fatal for the whole run, since a partially
// materialized sidecar would be worse than no sidecar.
func (f *Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := strings.TrimSuffix(f.BaseURL, "/") + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", name, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("template fetch for %s returned status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return data, nil
}

// Substitute applies the two-token substitution to fetched template content.
func Substitute(content []byte, c Context) []byte {
	s := string(content)
	s = strings.ReplaceAll(s, TokenProject, c.ProjectID)
	s = strings.ReplaceAll(s, TokenPort, strconv.Itoa(c.Port))
	return []byte(s)
}
