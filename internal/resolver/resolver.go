// Package resolver fetches $ref targets against an ordered list of base
// URIs: first base that yields readable content wins.
package resolver

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/schemakit-dev/schemakit/internal/schema"
)

// ResolutionError means no base URI produced content for a $ref. It keeps
// every attempted URI for diagnostics.
type ResolutionError struct {
	Ref       string
	Attempted []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve $ref %q (attempted: %s)",
		e.Ref, strings.Join(e.Attempted, ", "))
}

// Resolver resolves references relative to BaseURIs in order. Extensionless
// targets additionally fall back to each configured content type extension,
// so refs work before the extensionless symlink exists.
type Resolver struct {
	BaseURIs     []string
	ContentTypes []string
	Client       *http.Client
}

func New(baseURIs, contentTypes []string) *Resolver {
	return &Resolver{
		BaseURIs:     baseURIs,
		ContentTypes: contentTypes,
		Client:       http.DefaultClient,
	}
}

// Resolve returns the parsed content of the first candidate URI that
// succeeds. Single attempt per base, no retries.
func (r *Resolver) Resolve(ref string) (schema.Document, error) {
	candidates := r.candidates(ref)
	attempted := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		doc, tried, err := r.fetch(candidate)
		attempted = append(attempted, tried...)
		if err == nil {
			return doc, nil
		}
	}
	return nil, &ResolutionError{Ref: ref, Attempted: attempted}
}

func (r *Resolver) candidates(ref string) []string {
	if hasScheme(ref) {
		return []string{ref}
	}
	if len(r.BaseURIs) == 0 {
		return []string{ref}
	}
	out := make([]string, 0, len(r.BaseURIs))
	for _, base := range r.BaseURIs {
		out = append(out, joinURI(base, ref))
	}
	return out
}

// fetch reads one candidate, trying content type extensions when the
// candidate does not already carry one and the exact path misses. A
// version tail like "1.0.0" makes filepath.Ext report ".0", so only a
// configured content type counts as an extension here.
func (r *Resolver) fetch(candidate string) (schema.Document, []string, error) {
	paths := []string{candidate}
	ext := strings.TrimPrefix(filepath.Ext(candidate), ".")
	hasCT := false
	for _, ct := range r.ContentTypes {
		if ext == ct {
			hasCT = true
			break
		}
	}
	if !hasCT {
		for _, ct := range r.ContentTypes {
			paths = append(paths, candidate+"."+ct)
		}
	}
	attempted := make([]string, 0, len(paths))
	var lastErr error
	for _, p := range paths {
		attempted = append(attempted, p)
		data, err := r.read(p)
		if err != nil {
			lastErr = err
			continue
		}
		doc, err := schema.Parse(data, schema.ContentTypeFromPath(p))
		if err != nil {
			lastErr = err
			continue
		}
		return doc, attempted, nil
	}
	return nil, attempted, lastErr
}

func (r *Resolver) read(uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		resp, err := r.Client.Get(uri)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: status %d", uri, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	default:
		path := strings.TrimPrefix(uri, "file://")
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(abs)
	}
}

func hasScheme(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}

func joinURI(base, ref string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
}
