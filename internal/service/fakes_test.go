package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lucky-draw/internal/model"
	"lucky-draw/internal/repository"
)

type fakeTierStore struct {
	mu         sync.Mutex
	tiers      []model.PrizeTier
	replaceErr error
	listErr    error
}

func (f *fakeTierStore) List(_ context.Context) ([]model.PrizeTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.PrizeTier, len(f.tiers))
	copy(out, f.tiers)
	return out, nil
}

func (f *fakeTierStore) ReplaceAll(_ context.Context, tiers []model.PrizeTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.tiers = make([]model.PrizeTier, len(tiers))
	for i, t := range tiers {
		t.ID = int64(i + 1)
		f.tiers[i] = t
	}
	return nil
}

type fakeRecordStore struct {
	mu        sync.Mutex
	nextID    int64
	records   map[int64]*model.PrizeRecord
	createErr error
	writes    int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[int64]*model.PrizeRecord)}
}

func (f *fakeRecordStore) Create(_ context.Context, userID int64, goodsName string, goodsType model.GoodsType, drawValue int64, createdAt time.Time) (*model.PrizeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	rec := &model.PrizeRecord{
		ID:        f.nextID,
		UserID:    userID,
		GoodsName: goodsName,
		GoodsType: goodsType,
		DrawValue: drawValue,
		Status:    model.RecordActive,
		CreatedAt: createdAt,
	}
	f.records[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (f *fakeRecordStore) active(id int64) (*model.PrizeRecord, bool) {
	rec, ok := f.records[id]
	if !ok || rec.Status != model.RecordActive {
		return nil, false
	}
	return rec, true
}

func (f *fakeRecordStore) GetActive(_ context.Context, id int64) (*model.PrizeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.active(id)
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecordStore) GetActiveByUser(_ context.Context, id, userID int64) (*model.PrizeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.active(id)
	if !ok || rec.UserID != userID {
		return nil, repository.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecordStore) SetRecipientInfo(_ context.Context, id, userID int64, info []byte, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.active(id)
	if !ok || rec.UserID != userID || rec.IsSent {
		return repository.ErrStaleRecord
	}
	f.writes++
	rec.RecipientInfo = info
	rec.ModifiedBy = userID
	rec.ModifiedAt = &now
	return nil
}

func (f *fakeRecordStore) MarkSent(_ context.Context, id, adminID int64, proof []byte, now time.Time, prevModifiedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.active(id)
	if !ok {
		return repository.ErrStaleRecord
	}
	switch {
	case rec.ModifiedAt == nil && prevModifiedAt == nil:
	case rec.ModifiedAt != nil && prevModifiedAt != nil && rec.ModifiedAt.Equal(*prevModifiedAt):
	default:
		return repository.ErrStaleRecord
	}
	f.writes++
	rec.IsSent = true
	if rec.SentAt == nil {
		rec.SentAt = &now
	}
	rec.SendProof = proof
	rec.ModifiedBy = adminID
	rec.ModifiedAt = &now
	return nil
}

func (f *fakeRecordStore) Void(_ context.Context, id, adminID int64, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.active(id)
	if !ok || rec.IsSent {
		return repository.ErrStaleRecord
	}
	f.writes++
	rec.Status = model.RecordVoided
	rec.ModifiedBy = adminID
	rec.ModifiedAt = &now
	return nil
}

func (f *fakeRecordStore) List(_ context.Context, flt repository.RecordFilter) ([]*model.PrizeRecord, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*model.PrizeRecord
	for _, rec := range f.records {
		if rec.Status != model.RecordActive {
			continue
		}
		if flt.UserID != nil && rec.UserID != *flt.UserID {
			continue
		}
		if flt.GoodsName != "" && !strings.Contains(rec.GoodsName, flt.GoodsName) {
			continue
		}
		if flt.GoodsType != "" && rec.GoodsType != flt.GoodsType {
			continue
		}
		if flt.ExcludeNoWin && rec.GoodsType == model.GoodsNoWin {
			continue
		}
		cp := *rec
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	start := flt.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + flt.Limit
	if flt.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeRecordStore) get(id int64) model.PrizeRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.records[id]
}

// put stores a record directly, bypassing the draw engine.
func (f *fakeRecordStore) put(rec model.PrizeRecord) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = f.nextID
	if rec.Status == 0 {
		rec.Status = model.RecordActive
	}
	f.records[rec.ID] = &rec
	return rec.ID
}

type fakeAddressBook struct {
	addresses map[int64]model.Address
	districts map[int64]model.District
}

func (f *fakeAddressBook) GetActiveAddress(_ context.Context, addressID, userID int64) (*model.Address, error) {
	a, ok := f.addresses[addressID]
	if !ok || a.UserID != userID || a.Status != 1 {
		return nil, repository.ErrAddressNotFound
	}
	return &a, nil
}

func (f *fakeAddressBook) GetDistrict(_ context.Context, districtID int64) (*model.District, error) {
	d, ok := f.districts[districtID]
	if !ok {
		return nil, repository.ErrDistrictNotFound
	}
	return &d, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]*model.User
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]*model.User)}
	for i := range users {
		u := users[i]
		f.users[u.TelegramID] = &u
	}
	return f
}

func (f *fakeUsers) GetOrCreate(_ context.Context, telegramID int64, username string) (*model.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[telegramID]; ok {
		cp := *u
		return &cp, false, nil
	}
	u := &model.User{TelegramID: telegramID, Username: username}
	f.users[telegramID] = u
	cp := *u
	return &cp, true, nil
}

func (f *fakeUsers) UpdateUsername(_ context.Context, telegramID int64, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[telegramID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Username = username
	return nil
}

func (f *fakeUsers) UpdateMobilephone(_ context.Context, telegramID int64, mobilephone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[telegramID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Mobilephone = mobilephone
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByMobilephone(_ context.Context, mobilephone string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Mobilephone == mobilephone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByIDs(_ context.Context, ids []int64) (map[int64]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

// scriptedRandom replays draw values. Int64N returns value-1 so the engine
// sees exactly the scripted value.
type scriptedRandom struct {
	mu     sync.Mutex
	values []int64
}

func (r *scriptedRandom) Int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return (v - 1) % n
}
