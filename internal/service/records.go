package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"lucky-draw/internal/model"
	"lucky-draw/internal/pkg/clock"
	"lucky-draw/internal/repository"
)

// Page is one page of a listing.
type Page[T any] struct {
	List   []T
	Total  int64
	Page   int
	Count  int
	IsNext bool
}

func newPage[T any](list []T, total int64, page, count int) Page[T] {
	return Page[T]{
		List:   list,
		Total:  total,
		Page:   page,
		Count:  count,
		IsNext: int64(page*count) < total,
	}
}

// AdminRecord is a ledger row as shown to operators.
type AdminRecord struct {
	*model.PrizeRecord
	Username    string
	Mobilephone string
	IsAllowSend bool
}

// WinnerEntry is one row of the public winners ticker.
type WinnerEntry struct {
	Username  string
	GoodsName string
	GoodsType model.GoodsType
	CreatedAt time.Time
}

// AdminQuery filters the operator ledger view.
type AdminQuery struct {
	Username    string
	Mobilephone string
	GoodsName   string
	GoodsType   string
	Page        int
	Count       int
}

// UserQuery filters a user's own ledger view.
type UserQuery struct {
	GoodsName string
	GoodsType string
	Page      int
	Count     int
}

// RecordService answers ledger queries.
type RecordService struct {
	records  RecordStore
	users    UserDirectory
	clock    clock.Clock
	grace    time.Duration
	pageSize int
}

// NewRecordService creates a RecordService. pageSize is used when a query
// does not set Count.
func NewRecordService(records RecordStore, users UserDirectory, clk clock.Clock, grace time.Duration, pageSize int) *RecordService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &RecordService{
		records:  records,
		users:    users,
		clock:    clk,
		grace:    grace,
		pageSize: pageSize,
	}
}

// Detail returns an active record for operators.
func (s *RecordService) Detail(ctx context.Context, id int64) (*AdminRecord, error) {
	rec, err := s.records.GetActive(ctx, id)
	if err != nil {
		return nil, mapRecordErr("load prize record", err)
	}
	rows, err := s.decorate(ctx, []*model.PrizeRecord{rec})
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// AdminList lists active records newest first. Username and mobilephone
// filters are resolved through the user directory; an unknown user gives
// an empty page. When both are set the username wins.
func (s *RecordService) AdminList(ctx context.Context, q AdminQuery) (Page[AdminRecord], error) {
	page, count := s.paging(q.Page, q.Count)
	empty := newPage[AdminRecord](nil, 0, page, count)

	f := repository.RecordFilter{
		GoodsName: q.GoodsName,
		Offset:    (page - 1) * count,
		Limit:     count,
	}
	if err := s.applyGoodsType(&f, q.GoodsType); err != nil {
		return empty, err
	}

	if q.Username != "" || q.Mobilephone != "" {
		var (
			u   *model.User
			err error
		)
		if q.Username != "" {
			u, err = s.users.GetByUsername(ctx, q.Username)
		} else {
			u, err = s.users.GetByMobilephone(ctx, q.Mobilephone)
		}
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return empty, nil
			}
			return empty, persistence("look up user", err)
		}
		f.UserID = &u.TelegramID
	}

	recs, total, err := s.records.List(ctx, f)
	if err != nil {
		return empty, persistence("list prize records", err)
	}
	rows, err := s.decorate(ctx, recs)
	if err != nil {
		return empty, err
	}
	return newPage(rows, total, page, count), nil
}

// UserList lists the user's own active records newest first.
func (s *RecordService) UserList(ctx context.Context, userID int64, q UserQuery) (Page[*model.PrizeRecord], error) {
	page, count := s.paging(q.Page, q.Count)
	empty := newPage[*model.PrizeRecord](nil, 0, page, count)

	f := repository.RecordFilter{
		UserID:    &userID,
		GoodsName: q.GoodsName,
		Offset:    (page - 1) * count,
		Limit:     count,
	}
	if err := s.applyGoodsType(&f, q.GoodsType); err != nil {
		return empty, err
	}

	recs, total, err := s.records.List(ctx, f)
	if err != nil {
		return empty, persistence("list prize records", err)
	}
	return newPage(recs, total, page, count), nil
}

// Newest returns the latest winners with masked usernames. No-win draws
// are left out.
func (s *RecordService) Newest(ctx context.Context, count int) ([]WinnerEntry, error) {
	if count <= 0 {
		count = s.pageSize
	}
	recs, _, err := s.records.List(ctx, repository.RecordFilter{ExcludeNoWin: true, Limit: count})
	if err != nil {
		return nil, persistence("list newest winners", err)
	}
	users, err := s.lookupUsers(ctx, recs)
	if err != nil {
		return nil, err
	}

	out := make([]WinnerEntry, 0, len(recs))
	for _, rec := range recs {
		name := ""
		if u, ok := users[rec.UserID]; ok {
			name = MaskUsername(u.Username)
		}
		out = append(out, WinnerEntry{
			Username:  name,
			GoodsName: rec.GoodsName,
			GoodsType: rec.GoodsType,
			CreatedAt: rec.CreatedAt,
		})
	}
	return out, nil
}

// MaskUsername keeps the first and last characters and stars the rest.
func MaskUsername(name string) string {
	r := []rune(name)
	switch len(r) {
	case 0:
		return ""
	case 1:
		return string(r) + "*"
	case 2:
		return string(r[0]) + "*"
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

func (s *RecordService) paging(page, count int) (int, int) {
	if page < 1 {
		page = 1
	}
	if count <= 0 {
		count = s.pageSize
	}
	return page, count
}

func (s *RecordService) applyGoodsType(f *repository.RecordFilter, goodsType string) error {
	if goodsType == "" {
		return nil
	}
	t, err := model.ParseGoodsType(goodsType)
	if err != nil {
		return invalid("goods_type", err.Error())
	}
	f.GoodsType = t
	return nil
}

func (s *RecordService) lookupUsers(ctx context.Context, recs []*model.PrizeRecord) (map[int64]*model.User, error) {
	if len(recs) == 0 {
		return map[int64]*model.User{}, nil
	}
	ids := make([]int64, 0, len(recs))
	seen := make(map[int64]struct{}, len(recs))
	for _, rec := range recs {
		if _, ok := seen[rec.UserID]; ok {
			continue
		}
		seen[rec.UserID] = struct{}{}
		ids = append(ids, rec.UserID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, persistence("look up users", err)
	}
	return users, nil
}

func (s *RecordService) decorate(ctx context.Context, recs []*model.PrizeRecord) ([]AdminRecord, error) {
	users, err := s.lookupUsers(ctx, recs)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	rows := make([]AdminRecord, 0, len(recs))
	for _, rec := range recs {
		row := AdminRecord{
			PrizeRecord: rec,
			IsAllowSend: rec.Editable(now, s.grace),
		}
		if u, ok := users[rec.UserID]; ok {
			row.Username = u.Username
			row.Mobilephone = u.Mobilephone
		}
		rows = append(rows, row)
	}
	return rows, nil
}
