package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"

	"lucky-draw/internal/metrics"
	"lucky-draw/internal/model"
	"lucky-draw/internal/pkg/clock"
	"lucky-draw/internal/quota"
)

// DrawOutcome is the result of one draw.
type DrawOutcome struct {
	RecordID  int64
	GoodsName string
	GoodsType model.GoodsType
	DrawValue int64
	TierID    int64 // 0 when no tier matched or the quota turned the win into a loss
	WonCount  int64 // tier wins today including this one; 0 on no-win
}

// Won reports whether the draw awarded a prize.
func (o *DrawOutcome) Won() bool {
	return o.GoodsType != model.GoodsNoWin
}

// DrawService resolves draws against the prize table and the daily quota
// and appends every outcome to the ledger.
type DrawService struct {
	tiers   TierStore
	records RecordStore
	quota   quota.Tracker
	clock   clock.Clock
	rand    Random
	scale   int64
	metrics *metrics.LuckyMetrics
}

// NewDrawService creates a DrawService. Draw values are uniform in [1, scale].
func NewDrawService(
	tiers TierStore,
	records RecordStore,
	tracker quota.Tracker,
	clk clock.Clock,
	rnd Random,
	scale int64,
	m *metrics.LuckyMetrics,
) *DrawService {
	if rnd == nil {
		rnd = DefaultRandom{}
	}
	return &DrawService{
		tiers:   tiers,
		records: records,
		quota:   tracker,
		clock:   clk,
		rand:    rnd,
		scale:   scale,
		metrics: m,
	}
}

// ResolveTier returns the tier whose range contains value. Tiers are
// scanned in ascending id order so the lowest id wins on overlap. Returns
// nil when value falls into a gap.
func ResolveTier(tiers []model.PrizeTier, value int64) *model.PrizeTier {
	var hit *model.PrizeTier
	for i := range tiers {
		t := &tiers[i]
		if !t.Contains(value) {
			continue
		}
		if hit == nil || t.ID < hit.ID {
			hit = t
		}
	}
	return hit
}

// Draw performs one draw for the user.
func (s *DrawService) Draw(ctx context.Context, userID int64) (*DrawOutcome, error) {
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, persistence("load prize table", err)
	}
	if len(tiers) == 0 {
		return nil, ErrPrizeTableMissing
	}

	now := s.clock.Now()
	value := s.rand.Int64N(s.scale) + 1
	tier := ResolveTier(tiers, value)

	out := &DrawOutcome{
		GoodsName: model.NoWinGoodsName,
		GoodsType: model.GoodsNoWin,
		DrawValue: value,
	}

	reserved := false
	if tier != nil && tier.GoodsType != model.GoodsNoWin {
		state, err := s.quota.Acquire(ctx, tier.ID, tier.DayMax, now)
		switch {
		case err == nil:
			reserved = true
			out.TierID = tier.ID
			out.GoodsName = tier.GoodsName
			out.GoodsType = tier.GoodsType
			out.WonCount = state.WonCount
		case errors.Is(err, quota.ErrQuotaExceeded):
			s.metrics.ObserveQuotaRejected(strconv.FormatInt(tier.ID, 10))
			log.Debug().
				Int64("user_id", userID).
				Int64("tier_id", tier.ID).
				Int64("day_max", tier.DayMax).
				Msg("Tier quota used up, draw downgraded to no-win")
		default:
			return nil, persistence("reserve tier quota", err)
		}
	}

	rec, err := s.records.Create(ctx, userID, out.GoodsName, out.GoodsType, value, now)
	if err != nil {
		s.metrics.ObserveLedgerFailure()
		if reserved {
			if rerr := s.quota.Release(ctx, tier.ID, now); rerr != nil {
				log.Error().Err(rerr).
					Int64("tier_id", tier.ID).
					Msg("Failed to release quota after ledger failure")
			}
		}
		log.Error().Err(err).
			Int64("user_id", userID).
			Int64("draw_value", value).
			Msg("Failed to write draw outcome")
		return nil, persistence("write draw outcome", err)
	}

	out.RecordID = rec.ID
	s.metrics.ObserveDraw(string(out.GoodsType))

	log.Info().
		Int64("user_id", userID).
		Int64("record_id", rec.ID).
		Int64("draw_value", value).
		Int64("tier_id", out.TierID).
		Str("goods_type", string(out.GoodsType)).
		Msg("Draw completed")

	return out, nil
}
