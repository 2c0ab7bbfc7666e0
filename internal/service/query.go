package service

import (
	"context"
	"errors"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

const scanPageSize = 500

// findAll pages through every document matching filter.
func findAll(ctx context.Context, store repository.DocumentStore, filter repository.Filter, opts repository.ReadOptions) ([]domain.Document, error) {
	var out []domain.Document
	for offset := 0; ; offset += scanPageSize {
		page, err := store.Find(ctx, repository.Query{
			Filter: filter,
			Sort:   []repository.SortField{{Field: domain.FieldID}},
			Limit:  scanPageSize,
			Offset: offset,
		}, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < scanPageSize {
			return out, nil
		}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
