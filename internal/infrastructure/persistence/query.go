package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// owned starts a query on model restricted to rows of userID
func owned(ctx context.Context, db *gorm.DB, model interface{}, userID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).Model(model).Where("user_id = ?", userID)
}

// likeOperator returns the case-insensitive match operator for the dialect.
// SQLite's LIKE already ignores ASCII case.
func likeOperator(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

// applySearch matches term as a substring of any of columns
func applySearch(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	op := likeOperator(query)
	pattern := "%" + escapeLike(term) + "%"
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = col + " " + op + ` ? ESCAPE '\'`
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes s match literally inside a LIKE pattern escaped with '\'
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// applyDateRange bounds column inclusively by the set ends of r
func applyDateRange(query *gorm.DB, column string, r shared.DateRange) *gorm.DB {
	if r.From != nil {
		query = query.Where(column+" >= ?", *r.From)
	}
	if r.To != nil {
		query = query.Where(column+" <= ?", *r.To)
	}
	return query
}

// applyIn restricts column to values; an empty set is unfiltered
func applyIn[T any](query *gorm.DB, column string, values []T) *gorm.DB {
	if len(values) == 0 {
		return query
	}
	return query.Where(column+" IN ?", values)
}

// applyOrder orders by a whitelisted column with id as the tie-breaker so
// pages stay stable across requests.
func applyOrder(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir).Order("id " + dir)
}

// findPage counts the rows matched by query and loads the requested page
func findPage[M any](query *gorm.DB, filter shared.Filter, allowed map[string]bool) (shared.PageResult[M], error) {
	f := filter.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.PageResult[M]{}, err
	}

	var rows []M
	if total == 0 {
		return shared.NewPageResult(rows, 0, f.Page, f.PageSize), nil
	}
	err := applyOrder(query.Session(&gorm.Session{}), f, allowed).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error
	if err != nil {
		return shared.PageResult[M]{}, err
	}
	return shared.NewPageResult(rows, total, f.Page, f.PageSize), nil
}

// toDomainPage maps a page of rows into domain values
func toDomainPage[M any, D any](page shared.PageResult[M], convert func(*M) *D) shared.PageResult[D] {
	return shared.MapPage(page, func(rows []M) []D {
		return toDomainSlice(rows, convert)
	})
}

// findOne loads the first row matching query, mapping a miss onto notFound
func findOne[M any](query *gorm.DB, notFound error) (*M, error) {
	var model M
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &model, nil
}

// deleteOwned removes id from model's table when owned by userID
func deleteOwned(ctx context.Context, db *gorm.DB, model interface{}, userID, id uuid.UUID, notFound error) error {
	result := db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}

// toDomainSlice maps persistence rows into a domain slice
func toDomainSlice[M any, D any](rows []M, convert func(*M) *D) []D {
	out := make([]D, len(rows))
	for i := range rows {
		out[i] = *convert(&rows[i])
	}
	return out
}
