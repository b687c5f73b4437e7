package library

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

// ZoteroSQLite queries the Zotero desktop database directly. The database is opened
// query-only so a running Zotero instance is never disturbed.
type ZoteroSQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.LibraryClient = (*ZoteroSQLite)(nil)

// OpenZoteroSQLite opens zotero.sqlite at path.
func OpenZoteroSQLite(ctx context.Context, path string, logger *slog.Logger) (*ZoteroSQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("zotero sqlite path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("zotero database: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening zotero database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping zotero database: %w", err)
	}

	return &ZoteroSQLite{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (z *ZoteroSQLite) Close() error {
	return z.db.Close()
}

// lookupQuery selects non-deleted items whose field equals value, case-insensitively.
func lookupQuery(field, value string) sq.SelectBuilder {
	return sq.Select(
		"i.key",
		"t.typeName",
		"COALESCE((SELECT tv.value FROM itemData td "+
			"JOIN fields tf ON tf.fieldID = td.fieldID "+
			"JOIN itemDataValues tv ON tv.valueID = td.valueID "+
			"WHERE td.itemID = i.itemID AND tf.fieldName = 'title'), '')",
		"v.value",
	).
		From("items i").
		Join("itemTypes t ON t.itemTypeID = i.itemTypeID").
		Join("itemData d ON d.itemID = i.itemID").
		Join("fields f ON f.fieldID = d.fieldID").
		Join("itemDataValues v ON v.valueID = d.valueID").
		LeftJoin("deletedItems del ON del.itemID = i.itemID").
		Where(sq.Eq{"f.fieldName": field}).
		Where(sq.Expr("LOWER(v.value) = LOWER(?)", strings.TrimSpace(value))).
		Where("del.itemID IS NULL").
		OrderBy("i.key")
}

// Lookup finds items whose field (e.g. "DOI") equals value.
func (z *ZoteroSQLite) Lookup(ctx context.Context, field, value string) domain.LookupResult {
	query, args, err := lookupQuery(field, value).ToSql()
	if err != nil {
		return domain.Unavailable(fmt.Errorf("build lookup query: %w", err))
	}

	rows, err := z.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Unavailable(fmt.Errorf("query zotero: %w", err))
	}
	defer rows.Close()

	var entries []domain.LibraryEntry
	for rows.Next() {
		var entry domain.LibraryEntry
		var matched string
		if err := rows.Scan(&entry.Key, &entry.ItemType, &entry.Title, &matched); err != nil {
			return domain.Unavailable(fmt.Errorf("scan zotero row: %w", err))
		}
		if strings.EqualFold(field, "DOI") {
			entry.DOI = matched
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.Unavailable(fmt.Errorf("rows iteration: %w", err))
	}

	if z.logger != nil {
		z.logger.Debug("zotero sqlite lookup", "field", field, "value", value, "entries", len(entries))
	}
	return domain.Found(entries)
}
