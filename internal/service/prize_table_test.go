package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucky-draw/internal/model"
	"lucky-draw/internal/pkg/clock"
)

func validInputs() []TierInput {
	inputs := make([]TierInput, 0, model.TierCount)
	for _, t := range board() {
		inputs = append(inputs, TierInput{
			GoodsName: t.GoodsName,
			GoodsType: string(t.GoodsType),
			DayMax:    t.DayMax,
			MinRange:  t.MinRange,
			MaxRange:  t.MaxRange,
			ImageURL:  "https://cdn.example.com/prize.png",
		})
	}
	return inputs
}

func TestSetTiers_ReplacesWholeTable(t *testing.T) {
	store := &fakeTierStore{tiers: board()[:3]}
	clk := clock.NewFixed(at(16, 9))
	svc := NewPrizeTableService(store, clk, 10000)

	tiers, err := svc.SetTiers(context.Background(), adminID, validInputs())
	require.NoError(t, err)
	assert.Len(t, tiers, model.TierCount)

	stored, err := svc.AdminTiers(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, model.TierCount)
	for i, tier := range stored {
		assert.Equal(t, int64(i+1), tier.ID)
		assert.Equal(t, adminID, tier.CreatedBy)
		assert.Equal(t, clk.Now(), tier.CreatedAt)
	}
	assert.Equal(t, model.GoodsPhysical, stored[2].GoodsType)
}

func TestSetTiers_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in []TierInput) []TierInput
		field  string
	}{
		{"too few tiers", func(in []TierInput) []TierInput { return in[:8] }, "tiers"},
		{"too many tiers", func(in []TierInput) []TierInput { return append(in, in[0]) }, "tiers"},
		{"empty name", func(in []TierInput) []TierInput { in[0].GoodsName = ""; return in }, "tiers[0].goods_name"},
		{"long name", func(in []TierInput) []TierInput { in[1].GoodsName = strings.Repeat("奖", 51); return in }, "tiers[1].goods_name"},
		{"negative day max", func(in []TierInput) []TierInput { in[2].DayMax = -1; return in }, "tiers[2].day_max"},
		{"huge day max", func(in []TierInput) []TierInput { in[2].DayMax = 1000001; return in }, "tiers[2].day_max"},
		{"zero min", func(in []TierInput) []TierInput { in[3].MinRange = 0; return in }, "tiers[3].min_range"},
		{"max above scale", func(in []TierInput) []TierInput { in[8].MaxRange = 10001; return in }, "tiers[8].max_range"},
		{"inverted range", func(in []TierInput) []TierInput { in[4].MinRange, in[4].MaxRange = 5000, 4000; return in }, "tiers[4].min_range"},
		{"unknown goods type", func(in []TierInput) []TierInput { in[5].GoodsType = "gift"; return in }, "tiers[5].goods_type"},
		{"missing image", func(in []TierInput) []TierInput { in[6].ImageURL = ""; return in }, "tiers[6].image_url"},
		{"long image", func(in []TierInput) []TierInput { in[7].ImageURL = strings.Repeat("a", 101); return in }, "tiers[7].image_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeTierStore{tiers: board()}
			svc := NewPrizeTableService(store, clock.NewFixed(at(16, 9)), 10000)

			_, err := svc.SetTiers(context.Background(), adminID, tt.mutate(validInputs()))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, board(), store.tiers, "table must be untouched")
		})
	}
}

func TestSetTiers_LengthsCountRunes(t *testing.T) {
	svc := NewPrizeTableService(&fakeTierStore{}, clock.NewFixed(at(16, 9)), 10000)
	in := validInputs()
	in[0].GoodsName = strings.Repeat("奖", 50)
	in[1].ImageURL = "https://cdn.example.com/" + strings.Repeat("图", 100-len("https://cdn.example.com/"))

	_, err := svc.SetTiers(context.Background(), adminID, in)
	assert.NoError(t, err)

	in[1].ImageURL += "图"
	_, err = svc.SetTiers(context.Background(), adminID, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "tiers[1].image_url", ve.Field)
}

func TestSetTiers_StoreFailure(t *testing.T) {
	store := &fakeTierStore{replaceErr: errors.New("deadlock detected")}
	svc := NewPrizeTableService(store, clock.NewFixed(at(16, 9)), 10000)

	_, err := svc.SetTiers(context.Background(), adminID, validInputs())
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestUserTiers(t *testing.T) {
	store := &fakeTierStore{tiers: board()}
	svc := NewPrizeTableService(store, clock.NewFixed(at(16, 9)), 10000)

	tiers, err := svc.UserTiers(context.Background())
	require.NoError(t, err)
	require.Len(t, tiers, model.TierCount)
	assert.Equal(t, "Mug", tiers[2].GoodsName)
	assert.Equal(t, model.GoodsPhysical, tiers[2].GoodsType)
	assert.Equal(t, "实物", tiers[2].GoodsTypeLabel)
	assert.Equal(t, "未中奖", tiers[4].GoodsTypeLabel)
}
