package model

import (
	"encoding/json"
	"fmt"
)

// RecipientInfo is the delivery target a winner supplies for a prize.
// The concrete type depends on the record's goods type.
type RecipientInfo interface {
	GoodsType() GoodsType
}

// PhoneRecipient receives a telecom credit top-up.
type PhoneRecipient struct {
	Mobilephone string `json:"mobilephone"`
}

// GoodsType implements RecipientInfo.
func (PhoneRecipient) GoodsType() GoodsType { return GoodsTelecomCredit }

// QQRecipient receives game currency.
type QQRecipient struct {
	QQ string `json:"qq"`
}

// GoodsType implements RecipientInfo.
func (QQRecipient) GoodsType() GoodsType { return GoodsGameCurrency }

// ShippingRecipient is a point-in-time snapshot of a postal address.
type ShippingRecipient struct {
	Realname     string `json:"realname"`
	Zipcode      string `json:"zipcode"`
	Mobilephone  string `json:"mobilephone"`
	Address      string `json:"address"`
	ProvinceName string `json:"province_name"`
	CityName     string `json:"city_name"`
	DistrictName string `json:"district_name"`
	StreetName   string `json:"street_name"`
}

// GoodsType implements RecipientInfo.
func (ShippingRecipient) GoodsType() GoodsType { return GoodsPhysical }

// SendProof records how a prize was delivered.
type SendProof interface {
	GoodsType() GoodsType
}

// TransferProof proves a top-up or currency transfer. Kind is either
// GoodsTelecomCredit or GoodsGameCurrency.
type TransferProof struct {
	Kind    GoodsType `json:"-"`
	Channel string    `json:"channel"`
	SN      string    `json:"sn"`
}

// GoodsType implements SendProof.
func (p TransferProof) GoodsType() GoodsType { return p.Kind }

// ExpressProof proves a parcel shipment.
type ExpressProof struct {
	ExpressName string `json:"express_name"`
	ExpressSN   string `json:"express_sn"`
	ExpressTime string `json:"express_time"`
}

// GoodsType implements SendProof.
func (ExpressProof) GoodsType() GoodsType { return GoodsPhysical }

// EncodeRecipientInfo serializes recipient info for storage.
func EncodeRecipientInfo(info RecipientInfo) ([]byte, error) {
	return json.Marshal(info)
}

// DecodeRecipientInfo restores recipient info stored for a record of goods type t.
func DecodeRecipientInfo(t GoodsType, data []byte) (RecipientInfo, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var (
		info RecipientInfo
		err  error
	)
	switch t {
	case GoodsTelecomCredit:
		var v PhoneRecipient
		err = json.Unmarshal(data, &v)
		info = v
	case GoodsGameCurrency:
		var v QQRecipient
		err = json.Unmarshal(data, &v)
		info = v
	case GoodsPhysical:
		var v ShippingRecipient
		err = json.Unmarshal(data, &v)
		info = v
	default:
		return nil, fmt.Errorf("goods type %q carries no recipient info", t)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode recipient info: %w", err)
	}
	return info, nil
}

// EncodeSendProof serializes a send proof for storage.
func EncodeSendProof(proof SendProof) ([]byte, error) {
	return json.Marshal(proof)
}

// DecodeSendProof restores the send proof stored for a record of goods type t.
func DecodeSendProof(t GoodsType, data []byte) (SendProof, error) {
	if len(data) == 0 {
		return nil, nil
	}
	switch t {
	case GoodsTelecomCredit, GoodsGameCurrency:
		v := TransferProof{Kind: t}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to decode send proof: %w", err)
		}
		return v, nil
	case GoodsPhysical:
		var v ExpressProof
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to decode send proof: %w", err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("goods type %q carries no send proof", t)
}
