package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *sqliteRepository) GetAllItems(ctx context.Context) ([]*domain.MenuItem, error) {
	query := `
		SELECT id, name, description, price, image_url, category, options
		FROM menu_items
		ORDER BY sort_order, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []*domain.MenuItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *sqliteRepository) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	query := `
		SELECT id, name, description, price, image_url, category, options
		FROM menu_items
		WHERE id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}
	defer rows.Close()

	var item *domain.MenuItem
	for rows.Next() {
		item, err = scanItem(rows)
		if err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func scanItem(rows *sql.Rows) (*domain.MenuItem, error) {
	item := &domain.MenuItem{}
	var optionsJSON sql.NullString
	err := rows.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Image,
		&item.Category,
		&optionsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan menu item: %w", err)
	}

	if optionsJSON.Valid && optionsJSON.String != "" {
		if err := json.Unmarshal([]byte(optionsJSON.String), &item.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for item %s: %w", item.ID, err)
		}
	}

	return item, nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}
