package index

import (
	"context"
	"database/sql"
	"sort"

	"inkstone/internal/inkerr"
	"inkstone/internal/models"
)

// MetaSource is the slice of the document store the index reads from.
type MetaSource interface {
	ReadMeta(docPath string) (*models.Meta, error)
	FindDocuments(folder string) ([]string, error)
}

// ProgressFunc reports re-index progress as a 0..100 percentage.
type ProgressFunc func(percent int)

// IndexDocument reads a document's metadata from src and rebuilds its
// tag and attribute associations in one transaction. Either the full
// association set commits or none of it does.
func (ix *Index) IndexDocument(ctx context.Context, spaceKey, docPath string, src MetaSource) error {
	meta, err := src.ReadMeta(docPath)
	if err != nil {
		return err
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return inkerr.Index(err, "begin index transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	docID, err := upsertDocument(ctx, tx, spaceKey, docPath)
	if err != nil {
		return err
	}

	// Rebuild associations from scratch so indexing is idempotent.
	if _, err = tx.ExecContext(ctx, "DELETE FROM doc_tags WHERE doc_id = ?", docID); err != nil {
		return inkerr.Index(err, "clear tag associations")
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM doc_attributes WHERE doc_id = ?", docID); err != nil {
		return inkerr.Index(err, "clear attribute associations")
	}

	for _, tag := range models.NormalizeTags(meta.Tags) {
		var tagID int64
		tagID, err = upsertByUnique(ctx, tx,
			"INSERT OR IGNORE INTO tags (space_key, name) VALUES (?, ?)",
			"SELECT id FROM tags WHERE space_key = ? AND name = ?",
			spaceKey, tag)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, "INSERT OR IGNORE INTO doc_tags (doc_id, tag_id) VALUES (?, ?)", docID, tagID); err != nil {
			return inkerr.Index(err, "associate tag %q", tag)
		}
	}

	for _, key := range sortedAttributeKeys(meta.Attributes) {
		if !ix.IndexedAttribute(key) {
			continue
		}
		for _, value := range meta.Attributes[key].Values {
			var attrID int64
			attrID, err = upsertByUnique(ctx, tx,
				"INSERT OR IGNORE INTO attributes (space_key, key, value) VALUES (?, ?, ?)",
				"SELECT id FROM attributes WHERE space_key = ? AND key = ? AND value = ?",
				spaceKey, key, value)
			if err != nil {
				return err
			}
			if _, err = tx.ExecContext(ctx, "INSERT OR IGNORE INTO doc_attributes (doc_id, attr_id) VALUES (?, ?)", docID, attrID); err != nil {
				return inkerr.Index(err, "associate attribute %q", key)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return inkerr.Index(err, "commit index transaction")
	}
	return nil
}

// DeleteDocument removes a document row; association rows cascade.
// Orphaned tag and attribute rows stay until the next full re-index.
func (ix *Index) DeleteDocument(ctx context.Context, spaceKey, docPath string) error {
	if _, err := ix.db.ExecContext(ctx, "DELETE FROM documents WHERE space_key = ? AND doc_path = ?", spaceKey, docPath); err != nil {
		return inkerr.Index(err, "delete document %s", docPath)
	}
	return nil
}

// UpdateDocumentPath updates a document path in place so tag and
// attribute associations survive a rename.
func (ix *Index) UpdateDocumentPath(ctx context.Context, spaceKey, oldPath, newPath string) error {
	if _, err := ix.db.ExecContext(ctx, "UPDATE documents SET doc_path = ? WHERE space_key = ? AND doc_path = ?", newPath, spaceKey, oldPath); err != nil {
		return inkerr.Index(err, "update document path %s", oldPath)
	}
	return nil
}

// ClearIndex transactionally deletes all index rows for a space. Only
// a full re-index uses this.
func (ix *Index) ClearIndex(ctx context.Context, spaceKey string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return inkerr.Index(err, "begin clear transaction")
	}
	for _, stmt := range []string{
		"DELETE FROM documents WHERE space_key = ?",
		"DELETE FROM tags WHERE space_key = ?",
		"DELETE FROM attributes WHERE space_key = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, spaceKey); err != nil {
			_ = tx.Rollback()
			return inkerr.Index(err, "clear index for %s", spaceKey)
		}
	}
	if err := tx.Commit(); err != nil {
		return inkerr.Index(err, "commit clear transaction")
	}
	return nil
}

// IndexSpace rebuilds the whole index for a space from a directory
// walk, reporting progress after each document.
func (ix *Index) IndexSpace(ctx context.Context, spaceKey string, src MetaSource, progress ProgressFunc) error {
	if err := ix.ClearIndex(ctx, spaceKey); err != nil {
		return err
	}

	docs, err := src.FindDocuments("")
	if err != nil {
		return err
	}
	total := len(docs)
	if total == 0 {
		if progress != nil {
			progress(100)
		}
		return nil
	}

	for i, docPath := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ix.IndexDocument(ctx, spaceKey, docPath, src); err != nil {
			return err
		}
		if progress != nil {
			progress((i + 1) * 100 / total)
		}
	}
	return nil
}

// upsertDocument finds or creates the document row and returns its id.
func upsertDocument(ctx context.Context, tx *sql.Tx, spaceKey, docPath string) (int64, error) {
	return upsertByUnique(ctx, tx,
		"INSERT OR IGNORE INTO documents (space_key, doc_path) VALUES (?, ?)",
		"SELECT id FROM documents WHERE space_key = ? AND doc_path = ?",
		spaceKey, docPath)
}

// upsertByUnique inserts with OR IGNORE and re-selects the row id, so
// two callers racing on the same unique key both end up with the
// surviving row.
func upsertByUnique(ctx context.Context, tx *sql.Tx, insertSQL, selectSQL string, args ...any) (int64, error) {
	if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
		return 0, inkerr.Index(err, "upsert row")
	}
	var id int64
	if err := tx.QueryRowContext(ctx, selectSQL, args...).Scan(&id); err != nil {
		return 0, inkerr.Index(err, "fetch upserted row")
	}
	return id, nil
}

func sortedAttributeKeys(attributes map[string]models.AttrValue) []string {
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
