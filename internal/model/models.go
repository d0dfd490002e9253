package model

import "time"

// TierCount is the fixed number of prize tiers on the draw board.
const TierCount = 9

// NoWinGoodsName is the goods name recorded for losing draws.
const NoWinGoodsName = "no prize"

// PrizeTier is one configured slot of the draw board.
type PrizeTier struct {
	ID        int64     `db:"id"`
	GoodsName string    `db:"goods_name"`
	GoodsType GoodsType `db:"goods_type"`
	DayMax    int64     `db:"day_max"` // 0 means unlimited
	MinRange  int64     `db:"min_range"`
	MaxRange  int64     `db:"max_range"`
	ImageURL  string    `db:"image_url"`
	CreatedBy int64     `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

// Contains reports whether the draw value falls inside the tier's range.
func (t *PrizeTier) Contains(value int64) bool {
	return value >= t.MinRange && value <= t.MaxRange
}

// Unlimited reports whether the tier has no daily cap.
func (t *PrizeTier) Unlimited() bool {
	return t.DayMax == 0
}

// Record status values.
const (
	RecordActive = 1
	RecordVoided = 2
)

// PrizeRecord is the ledger entry written for every draw, win or lose.
// RecipientInfo and SendProof hold the JSON encoded fulfillment payloads.
type PrizeRecord struct {
	ID            int64      `db:"id"`
	UserID        int64      `db:"user_id"`
	GoodsName     string     `db:"goods_name"`
	GoodsType     GoodsType  `db:"goods_type"`
	DrawValue     int64      `db:"range_val"`
	Status        int        `db:"status"`
	IsSent        bool       `db:"is_sent"`
	SentAt        *time.Time `db:"sent_at"`
	RecipientInfo []byte     `db:"recipient_info"`
	SendProof     []byte     `db:"send_proof"`
	CreatedAt     time.Time  `db:"created_at"`
	ModifiedBy    int64      `db:"modified_by"`
	ModifiedAt    *time.Time `db:"modified_at"`
}

// HasRecipientInfo reports whether the winner supplied recipient info.
func (r *PrizeRecord) HasRecipientInfo() bool {
	return len(r.RecipientInfo) > 0
}

// Editable reports whether the record can still be changed by an operator:
// true unless it was sent more than grace ago.
func (r *PrizeRecord) Editable(now time.Time, grace time.Duration) bool {
	if r.SentAt == nil || r.SentAt.IsZero() {
		return true
	}
	return now.Sub(*r.SentAt) <= grace
}

// User is a registered participant.
type User struct {
	TelegramID  int64     `db:"telegram_id"`
	Username    string    `db:"username"`
	Mobilephone string    `db:"mobilephone"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Address is a shipping address from the user's address book.
type Address struct {
	ID          int64  `db:"address_id"`
	UserID      int64  `db:"user_id"`
	Realname    string `db:"realname"`
	Zipcode     string `db:"zipcode"`
	Mobilephone string `db:"mobilephone"`
	Address     string `db:"address"`
	DistrictID  int64  `db:"district_id"`
	Status      int    `db:"status"`
}

// District is the administrative area an address belongs to.
type District struct {
	ID           int64  `db:"district_id"`
	ProvinceName string `db:"province_name"`
	CityName     string `db:"city_name"`
	DistrictName string `db:"district_name"`
	StreetName   string `db:"street_name"`
}
