package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
	"github.com/google/uuid"
)

// PostgresRepository stores accounts in the accounts table, with the task
// list kept as a JSONB array.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, doc *models.AccountDocument) (*models.AccountDocument, error) {
	query :=
		`INSERT INTO accounts (id, username, password_hash, display_name, tasks)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Tasks == nil {
		doc.Tasks = []tasks.Task{}
	}

	payload, err := json.Marshal(doc.Tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		doc.ID, doc.UserName, doc.PasswordHash, doc.DisplayName, string(payload)).Scan(&doc.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.AccountDocument, error) {
	query :=
		`SELECT id, username, password_hash, display_name, tasks, created_at FROM accounts
		 WHERE username = $1
		 `
	return r.getOne(ctx, query, username)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.AccountDocument, error) {
	query :=
		`SELECT id, username, password_hash, display_name, tasks, created_at FROM accounts
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.AccountDocument, error) {
	doc, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.AccountDocument, error) {
	query :=
		`SELECT id, username, password_hash, display_name, tasks, created_at FROM accounts
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AccountDocument, 0)
	for rows.Next() {
		doc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateDisplayName(ctx context.Context, id string, displayName string) error {
	return r.updateOne(ctx, `UPDATE accounts SET display_name = $2 WHERE id = $1`, id, displayName)
}

func (r *PostgresRepository) UpdateUsername(ctx context.Context, id string, username string) error {
	err := r.updateOne(ctx, `UPDATE accounts SET username = $2 WHERE id = $1`, id, username)
	if dbx.IsUniqueViolation(err) {
		return common.ErrorAlreadyExists
	}
	return err
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	return r.updateOne(ctx, `UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *PostgresRepository) UpdateTasks(ctx context.Context, id string, list []tasks.Task) error {
	if list == nil {
		list = []tasks.Task{}
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return r.updateOne(ctx, `UPDATE accounts SET tasks = $2 WHERE id = $1`, id, string(payload))
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, id string, value any) error {
	res, err := r.db.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE username = $1`, username)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.AccountDocument, error) {
	doc := &models.AccountDocument{}
	var payload []byte

	if err := row.Scan(&doc.ID, &doc.UserName, &doc.PasswordHash, &doc.DisplayName, &payload, &doc.CreatedAt); err != nil {
		return nil, err
	}

	doc.Tasks = []tasks.Task{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &doc.Tasks); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
	}
	return doc, nil
}
