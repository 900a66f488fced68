// Package wikidata loads the speaker knowledge base and restricts it to the
// identities referenced by a quotation dataset.
package wikidata

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/quotelens/internal/corpus"
	"github.com/ppiankov/quotelens/internal/model"
)

// maxEntityLine bounds a single knowledge-base row
const maxEntityLine = 4 << 20

// LoadEntities reads JSON-lines entity rows. When keep is non-nil, rows whose
// ID it rejects are dropped while reading so only the subset is held.
func LoadEntities(ctx context.Context, r io.Reader, keep func(id string) bool) ([]model.Entity, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxEntityLine)

	var entities []model.Entity
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var e model.Entity
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("parse entity at line %d: %w", lineNo, err)
		}
		if e.ID == "" {
			continue
		}
		if keep != nil && !keep(e.ID) {
			continue
		}
		entities = append(entities, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan entities: %w", err)
	}

	return entities, nil
}

// LoadEntitiesFile is LoadEntities over a possibly compressed file
func LoadEntitiesFile(ctx context.Context, path string, keep func(id string) bool) ([]model.Entity, error) {
	rc, err := corpus.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	entities, err := LoadEntities(ctx, rc, keep)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return entities, nil
}
