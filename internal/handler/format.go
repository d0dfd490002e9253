// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"lucky-draw/internal/model"
	"lucky-draw/internal/service"
)

const requestTimeout = 10 * time.Second

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// displayName picks the name a sender is registered under.
func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// errorText turns a service error into a reply.
func errorText(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return "❌ 参数错误: " + service.Reason(err)
	case errors.Is(err, service.ErrNotFound):
		return "❌ " + service.Reason(err)
	case errors.Is(err, service.ErrStateConflict):
		return "⚠️ " + service.Reason(err)
	case errors.Is(err, service.ErrPersistence):
		return "❌ 服务繁忙，请稍后重试"
	}
	return "❌ 发生内部错误，请稍后重试"
}

func replyError(c tele.Context, op string, err error) error {
	if errors.Is(err, service.ErrPersistence) || !isClassified(err) {
		log.Error().Err(err).Str("operation", op).Msg("Command failed")
	}
	return c.Reply(errorText(err))
}

func isClassified(err error) bool {
	return errors.Is(err, service.ErrValidation) ||
		errors.Is(err, service.ErrNotFound) ||
		errors.Is(err, service.ErrStateConflict) ||
		errors.Is(err, service.ErrPersistence)
}

func formatTime(t time.Time) string {
	return t.Format(service.ExpressTimeLayout)
}

func sentText(rec *model.PrizeRecord) string {
	switch {
	case !rec.GoodsType.NeedsFulfillment():
		return "无需发放"
	case rec.IsSent:
		return "已发放"
	case rec.HasRecipientInfo():
		return "待发放"
	}
	return "待填写领奖信息"
}

func formatRecordLine(rec *model.PrizeRecord) string {
	return fmt.Sprintf("#%d %s [%s] %s · %s",
		rec.ID, rec.GoodsName, rec.GoodsType.Label(), formatTime(rec.CreatedAt), sentText(rec))
}

func formatRecipient(rec *model.PrizeRecord) string {
	info, err := model.DecodeRecipientInfo(rec.GoodsType, rec.RecipientInfo)
	if err != nil || info == nil {
		return "未填写"
	}
	switch v := info.(type) {
	case model.PhoneRecipient:
		return "手机号 " + v.Mobilephone
	case model.QQRecipient:
		return "QQ " + v.QQ
	case model.ShippingRecipient:
		return fmt.Sprintf("%s %s %s%s%s%s %s (%s)",
			v.Realname, v.Mobilephone, v.ProvinceName, v.CityName, v.DistrictName, v.StreetName, v.Address, v.Zipcode)
	}
	return "未知"
}

func formatProof(rec *model.PrizeRecord) string {
	proof, err := model.DecodeSendProof(rec.GoodsType, rec.SendProof)
	if err != nil || proof == nil {
		return "无"
	}
	switch v := proof.(type) {
	case model.TransferProof:
		return fmt.Sprintf("渠道 %s 流水号 %s", v.Channel, v.SN)
	case model.ExpressProof:
		return fmt.Sprintf("%s 单号 %s 发货时间 %s", v.ExpressName, v.ExpressSN, v.ExpressTime)
	}
	return "未知"
}

func pageFooter(page, count int, total int64, isNext bool, next string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n第 %d 页 · 每页 %d 条 · 共 %d 条", page, count, total)
	if isNext {
		fmt.Fprintf(&sb, "\n下一页: %s", next)
	}
	return sb.String()
}
