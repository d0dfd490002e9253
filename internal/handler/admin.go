package handler

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"lucky-draw/internal/service"
)

// AdminHandler handles operator commands. Every route is behind the admin
// middleware.
type AdminHandler struct {
	prizeTableService  *service.PrizeTableService
	recordService      *service.RecordService
	fulfillmentService *service.FulfillmentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	prizeTableService *service.PrizeTableService,
	recordService *service.RecordService,
	fulfillmentService *service.FulfillmentService,
) *AdminHandler {
	return &AdminHandler{
		prizeTableService:  prizeTableService,
		recordService:      recordService,
		fulfillmentService: fulfillmentService,
	}
}

const setPrizesUsage = "❌ 用法: /setprizes 后换行填写 9 行奖品\n" +
	"每行: 名称 | 类型(jb/qb/hf/sw/no) | 每日上限(0不限) | 最小值 | 最大值 | 图片地址"

// HandleSetPrizes handles the /setprizes command. The whole table is
// replaced at once.
func (h *AdminHandler) HandleSetPrizes(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	payload := ""
	if msg := c.Message(); msg != nil {
		payload = commandBody(msg.Text)
	}
	if strings.TrimSpace(payload) == "" {
		return c.Reply(setPrizesUsage)
	}
	inputs, err := parseTierLines(payload)
	if err != nil {
		return c.Reply(err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	tiers, err := h.prizeTableService.SetTiers(ctx, sender.ID, inputs)
	if err != nil {
		return replyError(c, "setprizes", err)
	}
	return c.Reply(fmt.Sprintf("✅ 奖品表已更新，共 %d 项", len(tiers)))
}

// HandleTiers handles the /tiers command.
func (h *AdminHandler) HandleTiers(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	tiers, err := h.prizeTableService.AdminTiers(ctx)
	if err != nil {
		return replyError(c, "tiers", err)
	}
	if len(tiers) == 0 {
		return c.Reply("📭 奖品尚未配置")
	}

	var sb strings.Builder
	sb.WriteString("🎁 奖品配置\n\n")
	for _, t := range tiers {
		dayMax := "不限"
		if !t.Unlimited() {
			dayMax = fmt.Sprintf("%d", t.DayMax)
		}
		fmt.Fprintf(&sb, "#%d %s [%s] 区间 %d-%d 每日 %s\n", t.ID, t.GoodsName, t.GoodsType.Label(), t.MinRange, t.MaxRange, dayMax)
	}
	fmt.Fprintf(&sb, "\n由 %d 于 %s 设置", tiers[0].CreatedBy, formatTime(tiers[0].CreatedAt))
	return c.Reply(sb.String())
}

// HandleRecords handles the /records command.
// Format: /records [username=..] [mobilephone=..] [goods_name=..] [goods_type=..] [page=..]
func (h *AdminHandler) HandleRecords(c tele.Context) error {
	kv, err := parseKV(c.Args())
	if err != nil {
		return c.Reply(err.Error())
	}
	q, err := adminQueryFromKV(kv)
	if err != nil {
		return c.Reply(err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	page, err := h.recordService.AdminList(ctx, q)
	if err != nil {
		return replyError(c, "records", err)
	}
	if page.Total == 0 {
		return c.Reply("📭 没有符合条件的记录")
	}

	var sb strings.Builder
	sb.WriteString("📜 中奖记录\n\n")
	for _, row := range page.List {
		sb.WriteString(formatRecordLine(row.PrizeRecord))
		fmt.Fprintf(&sb, " · @%s", row.Username)
		if !row.IsAllowSend {
			sb.WriteString(" · 🔒")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(pageFooter(page.Page, page.Count, page.Total, page.IsNext, fmt.Sprintf("/records page=%d", page.Page+1)))
	return c.Reply(sb.String())
}

// HandleRecord handles the /record command.
// Format: /record <record_id>
func (h *AdminHandler) HandleRecord(c tele.Context) error {
	id, err := parseRecordID(c.Args(), "/record <记录ID>")
	if err != nil {
		return c.Reply(err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	row, err := h.recordService.Detail(ctx, id)
	if err != nil {
		return replyError(c, "record", err)
	}

	sentAt := "-"
	if row.SentAt != nil {
		sentAt = formatTime(*row.SentAt)
	}
	return c.Reply(fmt.Sprintf(
		"📄 记录 #%d\n\n"+
			"👤 用户: @%s (ID: %d) %s\n"+
			"🎁 奖品: %s [%s]\n"+
			"🎲 号码: %d\n"+
			"🕒 时间: %s\n"+
			"📮 领奖信息: %s\n"+
			"🚚 发放: %s (%s)\n"+
			"🧾 凭证: %s\n"+
			"✏️ 可修改: %v",
		row.ID,
		row.Username, row.UserID, row.Mobilephone,
		row.GoodsName, row.GoodsType.Label(),
		row.DrawValue,
		formatTime(row.CreatedAt),
		formatRecipient(row.PrizeRecord),
		sentText(row.PrizeRecord), sentAt,
		formatProof(row.PrizeRecord),
		row.IsAllowSend,
	))
}

// HandleSend handles the /send command.
// Format: /send <record_id> channel=.. sn=..
// Format: /send <record_id> express_name=.. express_sn=.. express_time=2006-01-02_15:04:05
func (h *AdminHandler) HandleSend(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	id, err := parseRecordID(args, "/send <记录ID> key=value ...")
	if err != nil {
		return c.Reply(err.Error())
	}
	kv, err := parseKV(args[1:])
	if err != nil {
		return c.Reply(err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := h.fulfillmentService.MarkSent(ctx, sender.ID, id, proofFromKV(kv)); err != nil {
		return replyError(c, "send", err)
	}
	return c.Reply(fmt.Sprintf("✅ 记录 #%d 已标记发放", id))
}

// HandleVoid handles the /void command.
// Format: /void <record_id>
func (h *AdminHandler) HandleVoid(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	id, err := parseRecordID(c.Args(), "/void <记录ID>")
	if err != nil {
		return c.Reply(err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := h.fulfillmentService.Void(ctx, sender.ID, id); err != nil {
		return replyError(c, "void", err)
	}
	return c.Reply(fmt.Sprintf("✅ 记录 #%d 已删除", id))
}
