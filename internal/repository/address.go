package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-draw/internal/model"
)

// AddressRepository reads the shipping address book and district data.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository creates a new AddressRepository instance.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// GetActiveAddress returns an active address owned by userID.
func (r *AddressRepository) GetActiveAddress(ctx context.Context, addressID, userID int64) (*model.Address, error) {
	const query = `
		SELECT address_id, user_id, realname, zipcode, mobilephone, address, district_id, status
		FROM user_address
		WHERE address_id = $1 AND user_id = $2 AND status = 1
	`

	var a model.Address
	err := r.pool.QueryRow(ctx, query, addressID, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.Realname,
		&a.Zipcode,
		&a.Mobilephone,
		&a.Address,
		&a.DistrictID,
		&a.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	return &a, nil
}

// GetDistrict returns the district names for districtID.
func (r *AddressRepository) GetDistrict(ctx context.Context, districtID int64) (*model.District, error) {
	const query = `
		SELECT district_id, province_name, city_name, district_name, street_name
		FROM district
		WHERE district_id = $1
	`

	var d model.District
	err := r.pool.QueryRow(ctx, query, districtID).Scan(
		&d.ID,
		&d.ProvinceName,
		&d.CityName,
		&d.DistrictName,
		&d.StreetName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDistrictNotFound
		}
		return nil, fmt.Errorf("failed to get district: %w", err)
	}
	return &d, nil
}
