package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"lucky-draw/internal/model"
	"lucky-draw/internal/pkg/clock"
)

// Tier field limits.
const (
	maxGoodsNameLen = 50
	maxImageURLLen  = 100
	maxDayMax       = 1000000
)

// TierInput is one tier of an admin prize table submission.
type TierInput struct {
	GoodsName string
	GoodsType string
	DayMax    int64
	MinRange  int64
	MaxRange  int64
	ImageURL  string
}

// UserTier is the public view of a tier.
type UserTier struct {
	GoodsName      string
	ImageURL       string
	GoodsType      model.GoodsType
	GoodsTypeLabel string
}

// PrizeTableService administers the nine-tier prize table.
type PrizeTableService struct {
	tiers TierStore
	clock clock.Clock
	scale int64
}

// NewPrizeTableService creates a PrizeTableService. scale is the upper
// bound of the draw value; tier ranges must lie within [1, scale].
func NewPrizeTableService(tiers TierStore, clk clock.Clock, scale int64) *PrizeTableService {
	return &PrizeTableService{tiers: tiers, clock: clk, scale: scale}
}

// SetTiers validates and atomically replaces the whole prize table.
// Nothing is written unless all nine tiers are valid.
func (s *PrizeTableService) SetTiers(ctx context.Context, adminID int64, inputs []TierInput) ([]model.PrizeTier, error) {
	if len(inputs) != model.TierCount {
		return nil, invalid("tiers", fmt.Sprintf("exactly %d tiers are required, got %d", model.TierCount, len(inputs)))
	}

	now := s.clock.Now()
	tiers := make([]model.PrizeTier, 0, len(inputs))
	for i, in := range inputs {
		t, err := s.buildTier(i, in)
		if err != nil {
			return nil, err
		}
		t.CreatedBy = adminID
		t.CreatedAt = now
		tiers = append(tiers, t)
	}

	if err := s.tiers.ReplaceAll(ctx, tiers); err != nil {
		return nil, persistence("replace prize table", err)
	}

	log.Info().
		Int64("admin_id", adminID).
		Int("tiers", len(tiers)).
		Str("operation", "set_tiers").
		Msg("Prize table replaced")

	return tiers, nil
}

func (s *PrizeTableService) buildTier(i int, in TierInput) (model.PrizeTier, error) {
	field := func(name string) string { return fmt.Sprintf("tiers[%d].%s", i, name) }

	if n := utf8.RuneCountInString(in.GoodsName); n < 1 || n > maxGoodsNameLen {
		return model.PrizeTier{}, invalid(field("goods_name"), fmt.Sprintf("length must be 1-%d characters", maxGoodsNameLen))
	}
	if in.DayMax < 0 || in.DayMax > maxDayMax {
		return model.PrizeTier{}, invalid(field("day_max"), fmt.Sprintf("must be between 0 and %d", maxDayMax))
	}
	if in.MinRange < 1 || in.MinRange > s.scale {
		return model.PrizeTier{}, invalid(field("min_range"), fmt.Sprintf("must be between 1 and %d", s.scale))
	}
	if in.MaxRange < 1 || in.MaxRange > s.scale {
		return model.PrizeTier{}, invalid(field("max_range"), fmt.Sprintf("must be between 1 and %d", s.scale))
	}
	if in.MinRange > in.MaxRange {
		return model.PrizeTier{}, invalid(field("min_range"), "must not exceed max_range")
	}
	goodsType, err := model.ParseGoodsType(in.GoodsType)
	if err != nil {
		return model.PrizeTier{}, invalid(field("goods_type"), err.Error())
	}
	if in.ImageURL == "" {
		return model.PrizeTier{}, invalid(field("image_url"), "is required")
	}
	if utf8.RuneCountInString(in.ImageURL) > maxImageURLLen {
		return model.PrizeTier{}, invalid(field("image_url"), fmt.Sprintf("must not exceed %d characters", maxImageURLLen))
	}

	return model.PrizeTier{
		GoodsName: in.GoodsName,
		GoodsType: goodsType,
		DayMax:    in.DayMax,
		MinRange:  in.MinRange,
		MaxRange:  in.MaxRange,
		ImageURL:  in.ImageURL,
	}, nil
}

// AdminTiers returns the full tier configuration ordered by id.
func (s *PrizeTableService) AdminTiers(ctx context.Context) ([]model.PrizeTier, error) {
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, persistence("list prize table", err)
	}
	return tiers, nil
}

// UserTiers returns the public view of the draw board ordered by id.
func (s *PrizeTableService) UserTiers(ctx context.Context) ([]UserTier, error) {
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, persistence("list prize table", err)
	}
	out := make([]UserTier, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, UserTier{
			GoodsName:      t.GoodsName,
			ImageURL:       t.ImageURL,
			GoodsType:      t.GoodsType,
			GoodsTypeLabel: t.GoodsType.Label(),
		})
	}
	return out, nil
}
