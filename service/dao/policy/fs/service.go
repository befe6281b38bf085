// Package fs loads and stores policy definitions as YAML documents through
// the viant/afs abstract file system, so definitions can live on local disk,
// in memory (mem://) or any other supported scheme.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"gopkg.in/yaml.v3"

	"github.com/samuraitruong/guardian/model"
)

// Service reads and writes policy definition documents by URL.
type Service struct {
	fs afs.Service
}

// New creates a new file-system backed definition loader.
func New() *Service {
	return &Service{fs: afs.New()}
}

// Load reads a policy definition from the given URL. A missing extension
// defaults to .yaml.
func (s *Service) Load(ctx context.Context, URL string) (*model.Policy, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy from %s: %w", URL, err)
	}
	ret := &model.Policy{}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse policy from %s: %w", URL, err)
	}
	ret.EnsureDefaults()
	return ret, nil
}

// Save writes a policy definition to the given URL as YAML.
func (s *Service) Save(ctx context.Context, URL string, p *model.Policy) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store policy at %s: %w", URL, err)
	}
	return nil
}
