package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/davrell/reqnest/internal/errdef"
	"github.com/davrell/reqnest/internal/util"
	"github.com/davrell/reqnest/internal/workspace"
)

// Store owns the SQLite database backing one workspace.
type Store struct {
	db   *sql.DB
	path string
}

// Path returns the underlying SQLite file path.
func (s *Store) Path() string {
	return s.path
}

// Open initializes a SQLite database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "create workspace dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodePersistence, err, "open workspace db")
	}
	return &Store{db: db, path: path}, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init ensures pragmas and schema are configured.
func (s *Store) Init(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errdef.Wrap(errdef.CodePersistence, err, fmt.Sprintf("apply pragma %q", stmt))
		}
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			order_index INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			parent_folder_id TEXT REFERENCES folders(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			order_index INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			folder_id TEXT REFERENCES folders(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			order_index INTEGER NOT NULL,
			method TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			headers TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			script TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(collection_id, parent_folder_id, order_index);`,
		`CREATE INDEX IF NOT EXISTS idx_requests_parent ON requests(collection_id, folder_id, order_index);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errdef.Wrap(errdef.CodePersistence, err, "apply schema")
		}
	}
	return nil
}

// LoadWorkspace reads the full entity set for model construction.
func (s *Store) LoadWorkspace(ctx context.Context) ([]workspace.Collection, []workspace.Folder, []workspace.Request, error) {
	var cols []workspace.Collection
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, order_index FROM collections ORDER BY order_index`)
	if err != nil {
		return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "load collections")
	}
	defer rows.Close()
	for rows.Next() {
		var c workspace.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.OrderIndex); err != nil {
			return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "scan collection")
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "load collections")
	}

	var folders []workspace.Folder
	frows, err := s.db.QueryContext(ctx, `SELECT id, collection_id, parent_folder_id, name, order_index FROM folders`)
	if err != nil {
		return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "load folders")
	}
	defer frows.Close()
	for frows.Next() {
		var f workspace.Folder
		var parent sql.NullString
		if err := frows.Scan(&f.ID, &f.CollectionID, &parent, &f.Name, &f.OrderIndex); err != nil {
			return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "scan folder")
		}
		f.ParentFolderID = parent.String
		folders = append(folders, f)
	}
	if err := frows.Err(); err != nil {
		return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "load folders")
	}

	var requests []workspace.Request
	rrows, err := s.db.QueryContext(ctx, `SELECT id, collection_id, folder_id, name, order_index FROM requests`)
	if err != nil {
		return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "load requests")
	}
	defer rrows.Close()
	for rrows.Next() {
		var r workspace.Request
		var folder sql.NullString
		if err := rrows.Scan(&r.ID, &r.CollectionID, &folder, &r.Name, &r.OrderIndex); err != nil {
			return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "scan request")
		}
		r.FolderID = folder.String
		requests = append(requests, r)
	}
	if err := rrows.Err(); err != nil {
		return nil, nil, nil, errdef.Wrap(errdef.CodePersistence, err, "load requests")
	}
	return cols, folders, requests, nil
}

// SyncStructure makes the database's structural rows match the model: rows
// present in the model are upserted (request payload columns untouched),
// rows absent are deleted. One transaction; a failure rolls back to the
// pre-mutation state so no partial commit is ever visible.
func (s *Store) SyncStructure(ctx context.Context, cols []workspace.Collection, folders []workspace.Folder, requests []workspace.Request) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errdef.Wrap(errdef.CodePersistence, err, "begin sync")
	}
	if err := s.syncLocked(ctx, tx, cols, folders, requests); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errdef.Wrap(errdef.CodePersistence, err, "commit sync")
	}
	return nil
}

func (s *Store) syncLocked(ctx context.Context, tx *sql.Tx, cols []workspace.Collection, folders []workspace.Folder, requests []workspace.Request) error {
	for _, c := range cols {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collections(id, name, order_index) VALUES(?,?,?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, order_index = excluded.order_index`,
			c.ID, c.Name, c.OrderIndex)
		if err != nil {
			return errdef.Wrap(errdef.CodePersistence, err, "upsert collection")
		}
	}
	for _, f := range folders {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO folders(id, collection_id, parent_folder_id, name, order_index) VALUES(?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				collection_id = excluded.collection_id,
				parent_folder_id = excluded.parent_folder_id,
				name = excluded.name,
				order_index = excluded.order_index`,
			f.ID, f.CollectionID, nullable(f.ParentFolderID), f.Name, f.OrderIndex)
		if err != nil {
			return errdef.Wrap(errdef.CodePersistence, err, "upsert folder")
		}
	}
	for _, r := range requests {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO requests(id, collection_id, folder_id, name, order_index) VALUES(?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				collection_id = excluded.collection_id,
				folder_id = excluded.folder_id,
				name = excluded.name,
				order_index = excluded.order_index`,
			r.ID, r.CollectionID, nullable(r.FolderID), r.Name, r.OrderIndex)
		if err != nil {
			return errdef.Wrap(errdef.CodePersistence, err, "upsert request")
		}
	}

	// delete rows the model no longer has; requests and folders first so
	// collection deletes do not race their cascades
	if err := deleteAbsent(ctx, tx, "requests", requestIDs(requests)); err != nil {
		return err
	}
	if err := deleteAbsent(ctx, tx, "folders", folderIDs(folders)); err != nil {
		return err
	}
	if err := deleteAbsent(ctx, tx, "collections", collectionIDs(cols)); err != nil {
		return err
	}
	return nil
}

func deleteAbsent(ctx context.Context, tx *sql.Tx, table string, keep []string) error {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s`, table))
	if err != nil {
		return errdef.Wrap(errdef.CodePersistence, err, "list "+table)
	}
	defer rows.Close()
	keepSet := util.ToSet(keep)
	var gone []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return errdef.Wrap(errdef.CodePersistence, err, "scan "+table)
		}
		if _, ok := keepSet[id]; !ok {
			gone = append(gone, id)
		}
	}
	if err := rows.Err(); err != nil {
		return errdef.Wrap(errdef.CodePersistence, err, "list "+table)
	}
	for _, id := range gone {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id); err != nil {
			return errdef.Wrap(errdef.CodePersistence, err, "delete from "+table)
		}
	}
	return nil
}

// LoadPayload reads a request's editable payload.
func (s *Store) LoadPayload(requestID string) (workspace.Payload, error) {
	var p workspace.Payload
	err := s.db.QueryRow(`
		SELECT method, url, headers, body, script, description
		FROM requests WHERE id = ?`, requestID).
		Scan(&p.Method, &p.URL, &p.Headers, &p.Body, &p.Script, &p.Description)
	if err != nil {
		return workspace.Payload{}, errdef.Wrap(errdef.CodePersistence, err, "load payload")
	}
	return p, nil
}

// SavePayload writes a request's editable payload.
func (s *Store) SavePayload(requestID string, p workspace.Payload) error {
	res, err := s.db.Exec(`
		UPDATE requests SET method = ?, url = ?, headers = ?, body = ?, script = ?, description = ?
		WHERE id = ?`,
		p.Method, p.URL, p.Headers, p.Body, p.Script, p.Description, requestID)
	if err != nil {
		return errdef.Wrap(errdef.CodePersistence, err, "save payload")
	}
	count, err := res.RowsAffected()
	if err != nil {
		return errdef.Wrap(errdef.CodePersistence, err, "save payload")
	}
	if count == 0 {
		return errdef.New(errdef.CodePersistence, "request %s has no row", requestID)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requestIDs(rs []workspace.Request) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func folderIDs(fs []workspace.Folder) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.ID
	}
	return out
}

func collectionIDs(cs []workspace.Collection) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
