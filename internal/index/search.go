package index

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"inkstone/internal/inkerr"
	"inkstone/internal/models"
)

// DefaultSearchLimit caps unpaginated searches.
const DefaultSearchLimit = 10

// Search returns document paths matching the query, ordered by
// document id ascending so pagination is stable. The tag filter is an
// OR-set membership test; attribute filters AND per-key substring
// matches.
func (ix *Index) Search(ctx context.Context, spaceKey string, query models.SearchQuery) ([]string, error) {
	sqlQuery, args := buildSearchQuery(spaceKey, query)

	rows, err := ix.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, inkerr.Index(err, "search documents")
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var docPath string
		if err := rows.Scan(&docPath); err != nil {
			return nil, inkerr.Index(err, "scan search result")
		}
		paths = append(paths, docPath)
	}
	if err := rows.Err(); err != nil {
		return nil, inkerr.Index(err, "search documents")
	}
	return paths, nil
}

// Overview returns space-wide statistics. AttributeCount is the number
// of distinct attribute keys currently indexed, not values.
func (ix *Index) Overview(ctx context.Context, spaceKey string) (models.Overview, error) {
	var overview models.Overview

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM documents WHERE space_key = ?", &overview.DocumentCount},
		{"SELECT COUNT(*) FROM tags WHERE space_key = ?", &overview.TagCount},
		{"SELECT COUNT(DISTINCT key) FROM attributes WHERE space_key = ?", &overview.AttributeCount},
	}
	for _, c := range counts {
		if err := ix.db.QueryRowContext(ctx, c.query, spaceKey).Scan(c.dest); err != nil {
			return models.Overview{}, inkerr.Index(err, "space overview")
		}
	}
	return overview, nil
}

func buildSearchQuery(spaceKey string, query models.SearchQuery) (string, []any) {
	sqlQuery := "SELECT doc_path FROM documents d"
	where := []string{"d.space_key = ?"}
	args := []any{spaceKey}

	if len(query.Tags) > 0 {
		where = append(where, fmt.Sprintf(
			"d.id IN (SELECT dt.doc_id FROM doc_tags dt JOIN tags t ON t.id = dt.tag_id WHERE t.name IN (%s))",
			placeholders(len(query.Tags))))
		for _, tag := range query.Tags {
			args = append(args, tag)
		}
	}

	// Iterate attribute keys in sorted order so the generated SQL is
	// deterministic.
	attrKeys := make([]string, 0, len(query.Attributes))
	for key := range query.Attributes {
		attrKeys = append(attrKeys, key)
	}
	sort.Strings(attrKeys)
	for _, key := range attrKeys {
		where = append(where,
			"d.id IN (SELECT da.doc_id FROM doc_attributes da JOIN attributes a ON a.id = da.attr_id WHERE a.key = ? AND a.value LIKE '%' || ? || '%')")
		args = append(args, key, query.Attributes[key])
	}

	sqlQuery += " WHERE " + strings.Join(where, " AND ")
	sqlQuery += " ORDER BY d.id ASC"

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	sqlQuery += " LIMIT ?"
	args = append(args, limit)

	if query.Offset > 0 {
		sqlQuery += " OFFSET ?"
		args = append(args, query.Offset)
	}

	return sqlQuery, args
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", count), ",")
}
