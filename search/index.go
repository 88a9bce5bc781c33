// Package search is the local guideline index queried by the guideline agent.
package search

import (
	"boardroom/domain"
	"boardroom/errors"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/blugelabs/bluge"
)

const (
	fieldSource  = "source"
	fieldContent = "content"

	maxPassageLen = 1200
)

var indexedExtensions = []string{".md", ".txt"}

// Document is one passage of a guideline file.
type Document struct {
	ID      string
	Source  string
	Content string
}

type Index struct {
	log    *slog.Logger
	writer *bluge.Writer
}

// OpenIndex opens or creates the index at path. An empty path keeps it in memory.
func OpenIndex(log *slog.Logger, path string) (*Index, error) {
	cfg := bluge.InMemoryOnlyConfig()
	if path != "" {
		cfg = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &Index{log: log, writer: writer}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

func (i *Index) Add(ctx context.Context, docs ...Document) error {
	batch := bluge.NewBatch()
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := bluge.NewDocument(d.ID).
			AddField(bluge.NewKeywordField(fieldSource, d.Source).StoreValue()).
			AddField(bluge.NewTextField(fieldContent, d.Content).StoreValue())
		batch.Update(doc.ID(), doc)
	}
	return i.writer.Batch(batch)
}

// LoadDir indexes every markdown and text file under dir, one document per passage.
// It returns the number of passages indexed.
func (i *Index) LoadDir(ctx context.Context, dir string) (int, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasIndexedExtension(path) {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		for n, passage := range splitPassages(string(raw)) {
			docs = append(docs, Document{ID: fmt.Sprintf("%s#%d", name, n), Source: name, Content: passage})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk guidelines dir %s: %w", dir, err)
	}
	if err := i.Add(ctx, docs...); err != nil {
		return 0, err
	}
	i.log.Info("Guidelines indexed", "dir", dir, "passages", len(docs))
	return len(docs), nil
}

func (i *Index) Search(ctx context.Context, query string, top int) ([]domain.Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.ErrEmptyQuery
	}
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewMatchQuery(query).SetField(fieldContent)
	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(top, q))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var passages []domain.Passage
	match, err := dmi.Next()
	for err == nil && match != nil {
		p := domain.Passage{Score: match.Score}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldSource:
				p.Source = string(value)
			case fieldContent:
				p.Content = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(p.Content) != "" {
			passages = append(passages, p)
		}
		match, err = dmi.Next()
	}
	if err != nil {
		return nil, err
	}
	return passages, nil
}

func hasIndexedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range indexedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// splitPassages groups blank-line separated paragraphs up to maxPassageLen.
func splitPassages(text string) []string {
	var (
		passages []string
		current  strings.Builder
	)
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(para) > maxPassageLen {
			passages = append(passages, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		passages = append(passages, current.String())
	}
	return passages
}
