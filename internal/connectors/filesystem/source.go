// Package filesystem provides the local workspace as a document source.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// DefaultExtensions are the file types indexed when none are configured.
var DefaultExtensions = []string{".md", ".markdown", ".txt"}

// StateDir is the workspace directory holding the index and configuration.
// It is never walked.
const StateDir = ".recall"

// Source enumerates and reads text files under a workspace root.
type Source struct {
	root       string
	extensions map[string]bool
}

// Option configures a Source.
type Option func(*Source)

// WithExtensions replaces the indexable file extensions.
// Extensions are matched case-insensitively and may omit the leading dot.
func WithExtensions(exts ...string) Option {
	return func(s *Source) {
		if len(exts) == 0 {
			return
		}
		s.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.extensions[ext] = true
		}
	}
}

// New creates a source rooted at root.
func New(root string, opts ...Option) *Source {
	s := &Source{root: root}
	WithExtensions(DefaultExtensions...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the workspace root directory.
func (s *Source) Root() string {
	return s.root
}

// Indexable reports whether path has a supported extension and is not hidden.
func (s *Source) Indexable(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		rel = path
	}
	if isHidden(rel) {
		return false
	}
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

// Walk returns the indexable file paths under the root in sorted order.
// Hidden files and directories are skipped, the state directory included.
func (s *Source) Walk(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: root %s is not a directory", domain.ErrInvalidInput, s.root)
	}

	var paths []string
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == s.root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if s.extensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Read returns the content of path verbatim with metadata from its
// frontmatter and file info.
func (s *Source) Read(ctx context.Context, path string) (string, domain.IngestMetadata, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.IngestMetadata{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.IngestMetadata{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", domain.IngestMetadata{}, err
	}
	if info.IsDir() {
		return "", domain.IngestMetadata{}, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.IngestMetadata{}, err
	}
	content := string(data)

	meta := domain.IngestMetadata{
		FileType:   domain.FileTypeOf(path),
		ModifiedAt: info.ModTime(),
	}
	if fm, ok := ParseFrontmatter(content); ok {
		meta.Title = fm.Title
		meta.Tags = fm.Tags
	}
	return content, meta, nil
}

// isHidden returns true if any component of path starts with a dot.
// The special components "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
