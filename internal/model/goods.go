// Package model defines the data models for the lucky draw service.
package model

import "fmt"

// GoodsType classifies what a prize tier awards.
type GoodsType string

// Goods types. The values are the stored column values.
const (
	GoodsCoin          GoodsType = "jb" // platform coins, credited automatically
	GoodsGameCurrency  GoodsType = "qb" // QQ coins, delivered manually to a QQ number
	GoodsTelecomCredit GoodsType = "hf" // mobile top-up, delivered manually to a phone number
	GoodsPhysical      GoodsType = "sw" // physical good, shipped to a postal address
	GoodsNoWin         GoodsType = "no" // losing slot
)

// AllGoodsTypes returns every goods type in display order.
func AllGoodsTypes() []GoodsType {
	return []GoodsType{GoodsCoin, GoodsGameCurrency, GoodsTelecomCredit, GoodsPhysical, GoodsNoWin}
}

// ParseGoodsType converts a stored or user supplied value to a GoodsType.
func ParseGoodsType(s string) (GoodsType, error) {
	for _, t := range AllGoodsTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown goods type %q", s)
}

// Label returns the display label of the goods type.
func (t GoodsType) Label() string {
	switch t {
	case GoodsCoin:
		return "金币"
	case GoodsGameCurrency:
		return "Q币"
	case GoodsTelecomCredit:
		return "话费"
	case GoodsPhysical:
		return "实物"
	case GoodsNoWin:
		return "未中奖"
	}
	return string(t)
}

// NeedsFulfillment reports whether a won prize of this type goes through
// the manual supply-info / mark-sent lifecycle. Coins are credited on the
// spot and losing draws have nothing to deliver.
func (t GoodsType) NeedsFulfillment() bool {
	switch t {
	case GoodsGameCurrency, GoodsTelecomCredit, GoodsPhysical:
		return true
	case GoodsCoin, GoodsNoWin:
		return false
	}
	return false
}
