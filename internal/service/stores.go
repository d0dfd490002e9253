package service

import (
	"context"
	"math/rand/v2"
	"time"

	"lucky-draw/internal/model"
	"lucky-draw/internal/repository"
)

// TierStore persists the prize table.
type TierStore interface {
	List(ctx context.Context) ([]model.PrizeTier, error)
	ReplaceAll(ctx context.Context, tiers []model.PrizeTier) error
}

// RecordStore persists the prize ledger.
type RecordStore interface {
	Create(ctx context.Context, userID int64, goodsName string, goodsType model.GoodsType, drawValue int64, createdAt time.Time) (*model.PrizeRecord, error)
	GetActive(ctx context.Context, id int64) (*model.PrizeRecord, error)
	GetActiveByUser(ctx context.Context, id, userID int64) (*model.PrizeRecord, error)
	SetRecipientInfo(ctx context.Context, id, userID int64, info []byte, now time.Time) error
	MarkSent(ctx context.Context, id, adminID int64, proof []byte, now time.Time, prevModifiedAt *time.Time) error
	Void(ctx context.Context, id, adminID int64, now time.Time) error
	List(ctx context.Context, f repository.RecordFilter) ([]*model.PrizeRecord, int64, error)
}

// AddressBook resolves shipping addresses for physical prizes.
type AddressBook interface {
	GetActiveAddress(ctx context.Context, addressID, userID int64) (*model.Address, error)
	GetDistrict(ctx context.Context, districtID int64) (*model.District, error)
}

// UserDirectory resolves user display data for ledger listings.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByMobilephone(ctx context.Context, mobilephone string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)
}

// Random yields uniform integers in [0, n).
type Random interface {
	Int64N(n int64) int64
}

// DefaultRandom draws from the runtime's shared generator, which is safe
// for concurrent use.
type DefaultRandom struct{}

// Int64N implements Random.
func (DefaultRandom) Int64N(n int64) int64 {
	return rand.Int64N(n)
}

// UserStore registers participants.
type UserStore interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error)
	UpdateUsername(ctx context.Context, telegramID int64, username string) error
	UpdateMobilephone(ctx context.Context, telegramID int64, mobilephone string) error
}
