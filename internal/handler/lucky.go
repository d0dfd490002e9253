package handler

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"lucky-draw/internal/service"
)

// LuckyHandler handles the participant side of the lucky draw.
type LuckyHandler struct {
	accountService     *service.AccountService
	drawService        *service.DrawService
	prizeTableService  *service.PrizeTableService
	recordService      *service.RecordService
	fulfillmentService *service.FulfillmentService
	newestLimit        int
}

// NewLuckyHandler creates a new LuckyHandler.
func NewLuckyHandler(
	accountService *service.AccountService,
	drawService *service.DrawService,
	prizeTableService *service.PrizeTableService,
	recordService *service.RecordService,
	fulfillmentService *service.FulfillmentService,
	newestLimit int,
) *LuckyHandler {
	return &LuckyHandler{
		accountService:     accountService,
		drawService:        drawService,
		prizeTableService:  prizeTableService,
		recordService:      recordService,
		fulfillmentService: fulfillmentService,
		newestLimit:        newestLimit,
	}
}

// HandlePrizes handles the /prizes command.
func (h *LuckyHandler) HandlePrizes(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	tiers, err := h.prizeTableService.UserTiers(ctx)
	if err != nil {
		return replyError(c, "prizes", err)
	}
	if len(tiers) == 0 {
		return c.Reply("📭 奖品尚未配置")
	}

	var sb strings.Builder
	sb.WriteString("🎁 奖品一览\n\n")
	for i, t := range tiers {
		fmt.Fprintf(&sb, "%d. %s [%s]\n", i+1, t.GoodsName, t.GoodsTypeLabel)
	}
	return c.Reply(sb.String())
}

// HandleDraw handles the /draw command.
func (h *LuckyHandler) HandleDraw(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx, cancel := requestContext()
	defer cancel()

	if _, _, err := h.accountService.EnsureUser(ctx, sender.ID, displayName(sender)); err != nil {
		return replyError(c, "draw", err)
	}

	out, err := h.drawService.Draw(ctx, sender.ID)
	if err != nil {
		return replyError(c, "draw", err)
	}

	if !out.Won() {
		return c.Reply(fmt.Sprintf("🎲 抽奖号码 %d\n很遗憾，没有中奖，下次好运！", out.DrawValue))
	}

	msg := fmt.Sprintf("🎉 抽奖号码 %d\n恭喜获得 %s [%s]！\n记录ID: %d",
		out.DrawValue, out.GoodsName, out.GoodsType.Label(), out.RecordID)
	if out.GoodsType.NeedsFulfillment() {
		msg += fmt.Sprintf("\n\n请使用 /claim %d <领奖信息> 填写领奖信息", out.RecordID)
	}
	return c.Reply(msg)
}

// HandleMine handles the /mine command.
// Format: /mine [page]
func (h *LuckyHandler) HandleMine(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx, cancel := requestContext()
	defer cancel()

	page, err := h.recordService.UserList(ctx, sender.ID, service.UserQuery{Page: parsePage(c.Args())})
	if err != nil {
		return replyError(c, "mine", err)
	}
	if page.Total == 0 {
		return c.Reply("📭 暂无抽奖记录")
	}

	var sb strings.Builder
	sb.WriteString("📜 我的抽奖记录\n\n")
	for _, rec := range page.List {
		sb.WriteString(formatRecordLine(rec))
		sb.WriteString("\n")
	}
	sb.WriteString(pageFooter(page.Page, page.Count, page.Total, page.IsNext, fmt.Sprintf("/mine %d", page.Page+1)))
	return c.Reply(sb.String())
}

// HandleClaim handles the /claim command. The value is read as the field
// the prize type needs: mobile number, QQ number or address id.
// Format: /claim <record_id> <value>
func (h *LuckyHandler) HandleClaim(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	id, err := parseRecordID(args, "/claim <记录ID> <手机号|QQ号|地址ID>")
	if err != nil {
		return c.Reply(err.Error())
	}
	value := ""
	if len(args) > 1 {
		value = args[1]
	}

	ctx, cancel := requestContext()
	defer cancel()

	in := service.RecipientInput{Mobilephone: value, QQ: value, AddressID: value}
	if err := h.fulfillmentService.SupplyInfo(ctx, sender.ID, id, in); err != nil {
		return replyError(c, "claim", err)
	}

	log.Debug().Int64("user_id", sender.ID).Int64("record_id", id).Msg("Claim info accepted")
	return c.Reply("✅ 领奖信息已提交，请等待发放")
}

// HandleWinners handles the /winners command.
func (h *LuckyHandler) HandleWinners(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	winners, err := h.recordService.Newest(ctx, h.newestLimit)
	if err != nil {
		return replyError(c, "winners", err)
	}
	if len(winners) == 0 {
		return c.Reply("📭 暂无中奖记录")
	}

	var sb strings.Builder
	sb.WriteString("🏆 最新中奖\n\n")
	for _, w := range winners {
		fmt.Fprintf(&sb, "%s 获得 %s [%s]\n", w.Username, w.GoodsName, w.GoodsType.Label())
	}
	return c.Reply(sb.String())
}
