package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// coreTables is the allow-list of tables the cleanup operation preserves.
var coreTables = map[string]bool{
	"users":             true,
	"organizations":     true,
	"projects":          true,
	"memberships":       true,
	"invites":           true,
	"schema_migrations": true,
}

// CleanupUnusedTables drops every public table outside the core allow-list.
// Each table is logged before it is dropped; the operation is irreversible
// and callers must treat it as such. Returns the names of dropped tables.
func (db *DB) CleanupUnusedTables(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var candidates []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if !coreTables[name] {
			candidates = append(candidates, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		db.logger.Info().Msg("no tables to remove, database is clean")
		return nil, nil
	}

	var dropped []string
	for _, name := range candidates {
		db.logger.Warn().Str("table", name).Msg("dropping table outside allow-list")
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q CASCADE`, name)); err != nil {
			return dropped, fmt.Errorf("drop table %s: %w", name, err)
		}
		dropped = append(dropped, name)
	}

	db.logger.Warn().Strs("tables", dropped).Msg("cleanup complete; dropped tables cannot be restored")
	return dropped, nil
}

// StripOrganizationProfiles removes any legacy profile key from every
// organization settings document. The affected organizations are logged
// before the data is removed; the removal is irreversible. Returns the
// IDs of modified organizations.
func (db *DB) StripOrganizationProfiles(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT id FROM organizations WHERE settings ? 'profile'")
	if err != nil {
		return nil, fmt.Errorf("find organizations with profile data: %w", err)
	}
	defer rows.Close()

	var affected []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan organization id: %w", err)
		}
		affected = append(affected, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(affected) == 0 {
		return nil, nil
	}

	for _, id := range affected {
		db.logger.Warn().Str("org_id", id.String()).Msg("removing legacy profile data from organization")
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE organizations
		SET settings = settings - 'profile'
		WHERE settings ? 'profile'
	`)
	if err != nil {
		return nil, fmt.Errorf("strip organization profiles: %w", err)
	}
	return affected, nil
}
