package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/spk-college/techfest-service/internal/repositories"
)

// translateError maps GORM errors onto the repository sentinel errors so
// services never import gorm.
func translateError(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.NotFoundError(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s %v: %w", entity, id, repositories.ErrDuplicate)
	default:
		return err
	}
}

// applyPaginationAndSort applies limit/offset and a whitelisted sort column.
// Unknown columns fall back to created_at to keep ORDER BY injection-free.
func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	column := "created_at"
	if allowed[sortBy] {
		column = sortBy
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return query.Limit(limit).Offset(offset)
}
