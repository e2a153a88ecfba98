package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kazihub/backend/internal/models"
)

// CountryRepo reads country configuration (currency symbol, escrow
// account list) maintained outside this service.
type CountryRepo struct {
	pool *pgxpool.Pool
}

func NewCountryRepo(pool *pgxpool.Pool) *CountryRepo {
	return &CountryRepo{pool: pool}
}

func (r *CountryRepo) GetByCode(ctx context.Context, code string) (*models.Country, error) {
	var c models.Country
	err := r.pool.QueryRow(ctx, `
		SELECT code, name, currency_symbol FROM countries WHERE code = $1
	`, code).Scan(&c.Code, &c.Name, &c.CurrencySymbol)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CountryRepo) ListActiveEscrowAccounts(ctx context.Context, countryCode string) ([]*models.EscrowAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, country_code, account_name, account_number, account_type, COALESCE(provider, ''), COALESCE(phone_number, ''), is_active
		FROM escrow_accounts WHERE country_code = $1 AND is_active ORDER BY account_type, account_name
	`, countryCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EscrowAccount
	for rows.Next() {
		var a models.EscrowAccount
		if err := rows.Scan(&a.ID, &a.CountryCode, &a.AccountName, &a.AccountNumber, &a.AccountType, &a.Provider, &a.PhoneNumber, &a.IsActive); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
