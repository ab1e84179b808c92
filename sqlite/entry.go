package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/doxindex"
)

// Compile-time interface verification.
var _ doxindex.EntryService = (*EntryService)(nil)

// EntryService implements doxindex.EntryService using SQLite.
// Entries keep their table position so lookups return them in table order.
type EntryService struct {
	db *DB

	// Options are applied to every Index rebuilt by LoadIndex.
	Options []doxindex.IndexOption
}

// NewEntryService creates a new EntryService.
func NewEntryService(db *DB, opts ...doxindex.IndexOption) *EntryService {
	return &EntryService{db: db, Options: opts}
}

// HashIndex computes the xxHash of an index's entries and occurrences,
// in table order, as a hex string.
func HashIndex(idx *doxindex.Index) string {
	h := xxhash.New()
	write := func(fields ...string) {
		for _, f := range fields {
			_, _ = h.WriteString(f)
			_, _ = h.Write([]byte{0})
		}
	}
	for e := range idx.Entries() {
		write("E", e.Key, e.Label)
		for _, occ := range e.Occurrences {
			parent := "0"
			if occ.Parent {
				parent = "1"
			}
			write("O", occ.Text, occ.URL, occ.Anchor, occ.Context, parent)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ReplaceEntries replaces the project's table wholesale in one transaction.
func (s *EntryService) ReplaceEntries(ctx context.Context, projectID string, idx *doxindex.Index) (err error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := findProjectByID(ctx, tx, projectID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM occurrences WHERE project_id = ?", projectID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE project_id = ?", projectID); err != nil {
		return err
	}

	entryStmt, err := tx.PrepareContext(ctx, "INSERT INTO entries (project_id, position, key, label) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer entryStmt.Close()

	occStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO occurrences (project_id, entry_position, position, text, url, anchor, context, parent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer occStmt.Close()

	position := 0
	for e := range idx.Entries() {
		if _, err := entryStmt.ExecContext(ctx, projectID, position, e.Key, e.Label); err != nil {
			return fmt.Errorf("failed to insert entry %q: %w", e.Key, err)
		}
		for i, occ := range e.Occurrences {
			if _, err := occStmt.ExecContext(ctx, projectID, position, i,
				occ.Text, occ.URL, occ.Anchor, occ.Context, occ.Parent); err != nil {
				return fmt.Errorf("failed to insert occurrence of %q: %w", e.Key, err)
			}
		}
		position++
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE projects SET content_hash = ?, entry_count = ?, updated_at = ? WHERE id = ?
	`, HashIndex(idx), idx.Len(), formatTime(time.Now().UTC()), projectID); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadIndex rebuilds the project's table as an Index.
func (s *EntryService) LoadIndex(ctx context.Context, projectID string) (*doxindex.Index, error) {
	if _, err := findProjectByID(ctx, s.db, projectID); err != nil {
		return nil, err
	}

	entries, err := s.findEntries(ctx, projectID, "", nil, 0)
	if err != nil {
		return nil, err
	}

	return doxindex.NewIndex(entries, s.Options...)
}

// FindEntry retrieves the entry with exactly the given key.
func (s *EntryService) FindEntry(ctx context.Context, projectID, key string) (*doxindex.Entry, error) {
	entries, err := s.findEntries(ctx, projectID, "key = ?", []any{strings.ToLower(key)}, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "entry %q not found", key)
	}
	return entries[0], nil
}

// Lookup returns the project's entries whose key matches query, in table
// order. Each query prefix becomes a key range scan over the key index.
func (s *EntryService) Lookup(ctx context.Context, projectID, query string, limit int) ([]*doxindex.Entry, error) {
	if _, err := findProjectByID(ctx, s.db, projectID); err != nil {
		return nil, err
	}

	var where string
	var args []any

	q := doxindex.ParseQuery(query)
	if !q.IsEmpty() {
		var ranges []string
		for _, prefix := range q.Prefixes() {
			if upper := prefixUpperBound(prefix); upper != "" {
				ranges = append(ranges, "(key >= ? AND key < ?)")
				args = append(args, prefix, upper)
			} else {
				ranges = append(ranges, "key >= ?")
				args = append(args, prefix)
			}
		}
		where = strings.Join(ranges, " OR ")
	}

	return s.findEntries(ctx, projectID, where, args, limit)
}

// findEntries loads the project's entries matching the optional condition,
// with their occurrences, in table order.
func (s *EntryService) findEntries(ctx context.Context, projectID, cond string, condArgs []any, limit int) ([]*doxindex.Entry, error) {
	var query strings.Builder
	args := append([]any{projectID}, condArgs...)

	query.WriteString("SELECT position, key, label FROM entries WHERE project_id = ?")
	if cond != "" {
		query.WriteString(" AND (" + cond + ")")
	}
	query.WriteString(" ORDER BY position ASC")
	appendPagination(&query, &args, limit, 0)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*doxindex.Entry
	byPosition := make(map[int]*doxindex.Entry)
	var positions []any
	for rows.Next() {
		var position int
		var e doxindex.Entry
		if err := rows.Scan(&position, &e.Key, &e.Label); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
		byPosition[position] = &e
		positions = append(positions, position)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the connection before querying occurrences.
	rows.Close()

	if len(entries) == 0 {
		return nil, nil
	}

	if err := s.attachOccurrences(ctx, projectID, positions, byPosition); err != nil {
		return nil, err
	}
	return entries, nil
}

// attachOccurrences loads the occurrences of the entries at positions in
// batches that stay under SQLite's bind parameter limit.
func (s *EntryService) attachOccurrences(ctx context.Context, projectID string, positions []any, byPosition map[int]*doxindex.Entry) error {
	const batchSize = 500

	for batch := range slices.Chunk(positions, batchSize) {
		args := append([]any{projectID}, batch...)
		rows, err := s.db.QueryContext(ctx, `
			SELECT entry_position, text, url, anchor, context, parent
			FROM occurrences
			WHERE project_id = ? AND entry_position IN (`+placeholders(len(batch))+`)
			ORDER BY entry_position ASC, position ASC
		`, args...)
		if err != nil {
			return err
		}

		for rows.Next() {
			var position int
			var occ doxindex.Occurrence
			if err := rows.Scan(&position, &occ.Text, &occ.URL, &occ.Anchor, &occ.Context, &occ.Parent); err != nil {
				rows.Close()
				return err
			}
			if e, ok := byPosition[position]; ok {
				e.Occurrences = append(e.Occurrences, occ)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
