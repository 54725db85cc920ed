// internal/adapters/input/file.go
package input

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/logx"
)

// FileSource carga los enlaces de un fichero YAML o JSON. Formatos aceptados:
//
//	# lista de registros
//	- {id: 1, link: "https://www.dropbox.com/s/abc/file.zip"}
//
//	# lista de URLs
//	- https://www.dropbox.com/s/abc/file.zip
//
//	# documento con campo de enlace explícito
//	link_field: url
//	links:
//	  - {id: 1, url: "https://..."}
type FileSource struct {
	path      string
	linkField string
	logger    logx.Logger
}

// NewFileSource crea una fuente de fichero.
func NewFileSource(path, linkField string, logger logx.Logger) (*FileSource, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "file input requires a path")
	}
	if linkField == "" {
		linkField = "link"
	}
	if logger == nil {
		logger = logx.New()
	}
	return &FileSource{
		path:      path,
		linkField: linkField,
		logger:    logger.With("component", "file-input", "file", path),
	}, nil
}

func (s *FileSource) Name() string { return "file" }

// GetDownloadLinks lee y decodifica el fichero completo.
func (s *FileSource) GetDownloadLinks(_ context.Context) (string, []*domain.LinkRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read links file: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidInput), "parse links file %s", s.path)
	}

	linkField := s.linkField
	var items []any

	switch v := doc.(type) {
	case nil:
		// fichero vacío: batch vacío
	case []any:
		items = v
	case map[string]any:
		if lf, ok := v["link_field"].(string); ok && lf != "" {
			linkField = lf
		}
		list, ok := v["links"].([]any)
		if !ok && v["links"] != nil {
			return "", nil, errors.Wrapf(errors.ErrInvalidInput, "%s: links must be a list", s.path)
		}
		items = list
	default:
		return "", nil, errors.Wrapf(errors.ErrInvalidInput, "%s: expected a list of links", s.path)
	}

	records := make([]*domain.LinkRecord, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			records = append(records, domain.NewLinkRecord(map[string]any{linkField: v}, linkField))
		case map[string]any:
			records = append(records, domain.NewLinkRecord(v, linkField))
		default:
			return "", nil, errors.Wrapf(errors.ErrInvalidInput, "%s: item %d is neither a URL nor a record", s.path, i)
		}
	}

	s.logger.Debug("links file loaded", "records", len(records), "link_field", linkField)
	return linkField, records, nil
}

func (s *FileSource) Close() error { return nil }
