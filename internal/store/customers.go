package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldline/doorsync/internal/schema"
)

const upsertCustomerSQL = `
INSERT INTO customers (id, name, email, phone, address, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	email = excluded.email,
	phone = excluded.phone,
	address = excluded.address,
	created_at = excluded.created_at,
	updated_at = excluded.updated_at
`

// UpsertCustomer inserts or updates a single customer by id.
func (s *Store) UpsertCustomer(ctx context.Context, c schema.Customer) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx, upsertCustomerSQL, customerArgs(c)...); err != nil {
		return storageErr(fmt.Sprintf("upsert customer %s", c.ID), err)
	}
	return nil
}

// UpsertCustomers upserts a batch of customers in one transaction.
// Either every record persists or none does.
func (s *Store) UpsertCustomers(ctx context.Context, customers []schema.Customer) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin customer batch", err)
	}
	defer tx.Rollback()

	for _, c := range customers {
		if _, err := tx.ExecContext(ctx, upsertCustomerSQL, customerArgs(c)...); err != nil {
			return storageErr(fmt.Sprintf("upsert customer %s", c.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit customer batch", err)
	}
	return nil
}

// ReplaceCustomers swaps the whole collection for the given records in one
// transaction. Used by download: the remote side is authoritative for
// customers, so last writer from remote wins.
func (s *Store) ReplaceCustomers(ctx context.Context, customers []schema.Customer) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin customer replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM customers"); err != nil {
		return storageErr("clear customers", err)
	}
	for _, c := range customers {
		if _, err := tx.ExecContext(ctx, upsertCustomerSQL, customerArgs(c)...); err != nil {
			return storageErr(fmt.Sprintf("insert customer %s", c.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit customer replace", err)
	}
	return nil
}

// ListCustomers returns every customer.
func (s *Store) ListCustomers(ctx context.Context) ([]schema.Customer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectCustomerSQL)
	if err != nil {
		return nil, storageErr("list customers", err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

// CustomersByName returns all customers whose name equals name.
func (s *Store) CustomersByName(ctx context.Context, name string) ([]schema.Customer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectCustomerSQL+" WHERE name = ?", name)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("query customers by name %q", name), err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

const selectCustomerSQL = `
SELECT id, name, email, phone, address, created_at, updated_at
FROM customers`

func customerArgs(c schema.Customer) []interface{} {
	return []interface{}{
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		c.Address,
		c.CreatedAt.Format(time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
	}
}

// scanCustomers is a helper to scan multiple customers from query results.
func scanCustomers(rows *sql.Rows) ([]schema.Customer, error) {
	var customers []schema.Customer

	for rows.Next() {
		var c schema.Customer
		var createdAt, updatedAt string

		err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &createdAt, &updatedAt)
		if err != nil {
			return nil, storageErr("scan customer", err)
		}

		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			c.CreatedAt = t
		}
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			c.UpdatedAt = t
		}

		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate customers", err)
	}

	return customers, nil
}
