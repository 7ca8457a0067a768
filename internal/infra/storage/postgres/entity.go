package postgres

import (
	"context"
	"time"

	"github.com/luccasmb/chainhook/internal/chainscan"
	"github.com/luccasmb/chainhook/internal/watchreg"
)

// CreateAddress implements watchreg.EntityStorage.
func (c *Client) CreateAddress(ctx context.Context, address watchreg.Address) error {
	const query = `
		INSERT INTO watched_addresses (id, address, name, active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := c.pool.Exec(ctx, query,
		address.ID, address.Address, address.Name, address.Active, address.CreatedBy, address.CreatedAt,
	)
	if isUniqueViolation(err) {
		return watchreg.ErrEntityAlreadyRegistered
	}
	return err
}

// CreateContract implements watchreg.EntityStorage.
func (c *Client) CreateContract(ctx context.Context, contract watchreg.Contract) error {
	const query = `
		INSERT INTO watched_contracts (id, address, name, active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := c.pool.Exec(ctx, query,
		contract.ID, contract.Address, contract.Name, contract.Active, contract.CreatedBy, contract.CreatedAt,
	)
	if isUniqueViolation(err) {
		return watchreg.ErrEntityAlreadyRegistered
	}
	return err
}

// DeactivateAddress implements watchreg.EntityStorage.
func (c *Client) DeactivateAddress(ctx context.Context, address string) error {
	tag, err := c.pool.Exec(ctx, `UPDATE watched_addresses SET active = FALSE WHERE address = $1`, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return watchreg.ErrEntityNotFound
	}
	return nil
}

// DeactivateContract implements watchreg.EntityStorage.
func (c *Client) DeactivateContract(ctx context.Context, address string) error {
	tag, err := c.pool.Exec(ctx, `UPDATE watched_contracts SET active = FALSE WHERE address = $1`, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return watchreg.ErrEntityNotFound
	}
	return nil
}

// ListActiveEntities implements chainscan.EntityStorage.
func (c *Client) ListActiveEntities(ctx context.Context) ([]chainscan.Entity, error) {
	const query = `
		SELECT id, address, 'address' AS kind FROM watched_addresses WHERE active
		UNION ALL
		SELECT id, address, 'contract' AS kind FROM watched_contracts WHERE active`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []chainscan.Entity
	for rows.Next() {
		var (
			entity chainscan.Entity
			kind   string
		)
		if err := rows.Scan(&entity.ID, &entity.Address, &kind); err != nil {
			return nil, err
		}
		entity.Kind = chainscan.EntityKind(kind)
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

// TouchEntity implements chainscan.EntityStorage.
func (c *Client) TouchEntity(ctx context.Context, entity chainscan.Entity, at time.Time) error {
	table := "watched_addresses"
	if entity.Kind == chainscan.EntityKindContract {
		table = "watched_contracts"
	}

	_, err := c.pool.Exec(ctx, `UPDATE `+table+` SET last_checked_at = $1 WHERE id = $2`, at, entity.ID)
	return err
}

var (
	_ watchreg.EntityStorage  = (*Client)(nil)
	_ chainscan.EntityStorage = (*Client)(nil)
)
