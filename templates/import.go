package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/poiesic/conformit/core"
)

// FilePattern selects template files below an import directory.
const FilePattern = "**/*.json"

// templateFile is the on-disk form of a template. Files exported by older
// authoring tools nest descriptions under conceptOutline.
type templateFile struct {
	core.ConceptTemplate
	ConceptOutline *struct {
		Descriptions []core.DescriptionTemplate `json:"descriptions"`
	} `json:"conceptOutline,omitempty"`
}

// Import saves every template file found below dir.
// A file without a name takes its path relative to dir, minus the extension.
// Files that fail to decode or save are skipped; their errors are joined into
// the returned error alongside the count of imported templates.
func (s *Service) Import(ctx context.Context, dir string) (int, error) {
	return s.ImportFS(ctx, os.DirFS(dir))
}

// ImportFS is Import over an fs.FS.
func (s *Service) ImportFS(ctx context.Context, fsys fs.FS) (int, error) {
	paths, err := doublestar.Glob(fsys, FilePattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("listing template files: %w", err)
	}

	var (
		imported int
		errs     []error
	)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return imported, err
		}
		template, err := readTemplateFile(fsys, p)
		if err == nil {
			_, err = s.Save(ctx, template)
		}
		if err != nil {
			s.logger.Warn("skipping template file", "path", p, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		imported++
	}
	s.logger.Info("imported templates", "count", imported, "failed", len(errs))
	return imported, errors.Join(errs...)
}

func readTemplateFile(fsys fs.FS, p string) (*core.ConceptTemplate, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	var tf templateFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
	}
	template := tf.ConceptTemplate
	if len(template.Descriptions) == 0 && tf.ConceptOutline != nil {
		template.Descriptions = tf.ConceptOutline.Descriptions
	}
	if template.Name == "" {
		template.Name = strings.TrimSuffix(p, path.Ext(p))
	}
	return &template, nil
}
