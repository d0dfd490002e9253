package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"lucky-draw/internal/metrics"
	"lucky-draw/internal/model"
	"lucky-draw/internal/pkg/clock"
	"lucky-draw/internal/repository"
)

// Transition names used in logs and metrics.
const (
	TransitionSupplyInfo = "supply_info"
	TransitionMarkSent   = "mark_sent"
	TransitionVoid       = "void"
)

// RecipientInput is what a winner submits to claim a prize. Which field is
// required depends on the record's goods type.
type RecipientInput struct {
	Mobilephone string // telecom credit
	QQ          string // game currency
	AddressID   string // physical good
}

// ProofInput is what an operator submits when marking a prize sent.
type ProofInput struct {
	Channel     string
	SN          string
	ExpressName string
	ExpressSN   string
	ExpressTime string
}

// Empty reports whether no proof field was supplied.
func (p ProofInput) Empty() bool {
	return p == ProofInput{}
}

// FulfillmentService moves won prizes from awarded through info supplied
// to sent.
type FulfillmentService struct {
	records   RecordStore
	addresses AddressBook
	clock     clock.Clock
	grace     time.Duration
	loc       *time.Location
	metrics   *metrics.LuckyMetrics
}

// NewFulfillmentService creates a FulfillmentService. grace is how long a
// sent record stays editable; loc is used to parse shipment times.
func NewFulfillmentService(
	records RecordStore,
	addresses AddressBook,
	clk clock.Clock,
	grace time.Duration,
	loc *time.Location,
	m *metrics.LuckyMetrics,
) *FulfillmentService {
	if loc == nil {
		loc = time.Local
	}
	return &FulfillmentService{
		records:   records,
		addresses: addresses,
		clock:     clk,
		grace:     grace,
		loc:       loc,
		metrics:   m,
	}
}

// SupplyInfo validates and stores the winner's recipient info. Physical
// goods snapshot the chosen address so later address edits do not leak in.
func (s *FulfillmentService) SupplyInfo(ctx context.Context, userID, recordID int64, in RecipientInput) error {
	err := s.supplyInfo(ctx, userID, recordID, in)
	s.metrics.ObserveTransition(TransitionSupplyInfo, err)
	return err
}

func (s *FulfillmentService) supplyInfo(ctx context.Context, userID, recordID int64, in RecipientInput) error {
	rec, err := s.records.GetActiveByUser(ctx, recordID, userID)
	if err != nil {
		return mapRecordErr("load prize record", err)
	}
	if !rec.GoodsType.NeedsFulfillment() {
		return ErrNotFulfillable
	}
	if rec.IsSent {
		return ErrAlreadySent
	}

	info, err := s.buildRecipient(ctx, userID, rec.GoodsType, in)
	if err != nil {
		return err
	}
	data, err := model.EncodeRecipientInfo(info)
	if err != nil {
		return persistence("encode recipient info", err)
	}

	if err := s.records.SetRecipientInfo(ctx, recordID, userID, data, s.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleRecord) {
			return ErrConcurrentUpdate
		}
		return persistence("store recipient info", err)
	}

	log.Info().
		Int64("user_id", userID).
		Int64("record_id", recordID).
		Str("goods_type", string(rec.GoodsType)).
		Str("operation", TransitionSupplyInfo).
		Msg("Recipient info supplied")
	return nil
}

func (s *FulfillmentService) buildRecipient(ctx context.Context, userID int64, t model.GoodsType, in RecipientInput) (model.RecipientInfo, error) {
	switch t {
	case model.GoodsTelecomCredit:
		if in.Mobilephone == "" {
			return nil, invalid("mobilephone", "is required")
		}
		if !IsMobilephone(in.Mobilephone) {
			return nil, invalid("mobilephone", "is not a valid mobile number")
		}
		return model.PhoneRecipient{Mobilephone: in.Mobilephone}, nil

	case model.GoodsGameCurrency:
		if in.QQ == "" {
			return nil, invalid("qq", "is required")
		}
		if !IsQQ(in.QQ) {
			return nil, invalid("qq", "is not a valid QQ number")
		}
		return model.QQRecipient{QQ: in.QQ}, nil

	case model.GoodsPhysical:
		addressID, err := parseID("address_id", in.AddressID)
		if err != nil {
			return nil, err
		}
		addr, err := s.addresses.GetActiveAddress(ctx, addressID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrAddressNotFound) {
				return nil, ErrAddressNotFound
			}
			return nil, persistence("load address", err)
		}
		district, err := s.addresses.GetDistrict(ctx, addr.DistrictID)
		if err != nil {
			if errors.Is(err, repository.ErrDistrictNotFound) {
				return nil, ErrDistrictNotFound
			}
			return nil, persistence("load district", err)
		}
		return model.ShippingRecipient{
			Realname:     addr.Realname,
			Zipcode:      addr.Zipcode,
			Mobilephone:  addr.Mobilephone,
			Address:      addr.Address,
			ProvinceName: district.ProvinceName,
			CityName:     district.CityName,
			DistrictName: district.DistrictName,
			StreetName:   district.StreetName,
		}, nil

	case model.GoodsCoin, model.GoodsNoWin:
	}
	return nil, ErrNotFulfillable
}

// MarkSent records proof of delivery. A sent record may be re-marked to
// correct the proof until the grace period after its first send elapses.
func (s *FulfillmentService) MarkSent(ctx context.Context, adminID, recordID int64, in ProofInput) error {
	err := s.markSent(ctx, adminID, recordID, in)
	s.metrics.ObserveTransition(TransitionMarkSent, err)
	return err
}

func (s *FulfillmentService) markSent(ctx context.Context, adminID, recordID int64, in ProofInput) error {
	rec, err := s.records.GetActive(ctx, recordID)
	if err != nil {
		return mapRecordErr("load prize record", err)
	}
	if !rec.GoodsType.NeedsFulfillment() {
		return ErrNotFulfillable
	}

	now := s.clock.Now()
	if rec.IsSent && !rec.Editable(now, s.grace) {
		return ErrSendLocked
	}
	if !rec.HasRecipientInfo() {
		return ErrInfoNotSupplied
	}
	if in.Empty() {
		return invalid("proof", "send proof is required")
	}

	proof, err := s.buildProof(rec.GoodsType, in)
	if err != nil {
		return err
	}
	data, err := model.EncodeSendProof(proof)
	if err != nil {
		return persistence("encode send proof", err)
	}

	if err := s.records.MarkSent(ctx, recordID, adminID, data, now, rec.ModifiedAt); err != nil {
		if errors.Is(err, repository.ErrStaleRecord) {
			return ErrConcurrentUpdate
		}
		return persistence("mark prize sent", err)
	}

	log.Info().
		Int64("admin_id", adminID).
		Int64("record_id", recordID).
		Str("goods_type", string(rec.GoodsType)).
		Bool("resend", rec.IsSent).
		Str("operation", TransitionMarkSent).
		Msg("Prize marked sent")
	return nil
}

func (s *FulfillmentService) buildProof(t model.GoodsType, in ProofInput) (model.SendProof, error) {
	switch t {
	case model.GoodsTelecomCredit, model.GoodsGameCurrency:
		if in.Channel == "" {
			return nil, invalid("channel", "is required")
		}
		if in.SN == "" {
			return nil, invalid("sn", "is required")
		}
		return model.TransferProof{Kind: t, Channel: in.Channel, SN: in.SN}, nil

	case model.GoodsPhysical:
		if in.ExpressName == "" {
			return nil, invalid("express_name", "is required")
		}
		if in.ExpressSN == "" {
			return nil, invalid("express_sn", "is required")
		}
		if in.ExpressTime == "" {
			return nil, invalid("express_time", "is required")
		}
		if _, ok := parseExpressTime(in.ExpressTime, s.loc); !ok {
			return nil, invalid("express_time", "must be formatted as YYYY-MM-DD HH:MM:SS")
		}
		return model.ExpressProof{
			ExpressName: in.ExpressName,
			ExpressSN:   in.ExpressSN,
			ExpressTime: in.ExpressTime,
		}, nil

	case model.GoodsCoin, model.GoodsNoWin:
	}
	return nil, ErrNotFulfillable
}

// Void soft-deletes an unsent record.
func (s *FulfillmentService) Void(ctx context.Context, adminID, recordID int64) error {
	err := s.void(ctx, adminID, recordID)
	s.metrics.ObserveTransition(TransitionVoid, err)
	return err
}

func (s *FulfillmentService) void(ctx context.Context, adminID, recordID int64) error {
	rec, err := s.records.GetActive(ctx, recordID)
	if err != nil {
		return mapRecordErr("load prize record", err)
	}
	if rec.IsSent {
		return ErrAlreadySent
	}

	if err := s.records.Void(ctx, recordID, adminID, s.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleRecord) {
			return ErrConcurrentUpdate
		}
		return persistence("void prize record", err)
	}

	log.Info().
		Int64("admin_id", adminID).
		Int64("record_id", recordID).
		Str("operation", TransitionVoid).
		Msg("Prize record voided")
	return nil
}

func mapRecordErr(op string, err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return persistence(op, err)
}
