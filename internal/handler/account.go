package handler

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"lucky-draw/internal/service"
)

// AccountHandler handles registration commands.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// HandleStart handles the /start command. It registers the sender and
// lists the commands.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx, cancel := requestContext()
	defer cancel()

	username := displayName(sender)
	_, created, err := h.accountService.EnsureUser(ctx, sender.ID, username)
	if err != nil {
		return replyError(c, "start", err)
	}

	greeting := fmt.Sprintf("👋 欢迎回来 @%s！", username)
	if created {
		greeting = fmt.Sprintf("🎉 欢迎 @%s！", username)
	}
	return c.Reply(greeting + "\n\n" +
		"可用命令:\n" +
		"/prizes - 查看奖品\n" +
		"/draw - 抽奖\n" +
		"/mine [页码] - 我的中奖记录\n" +
		"/claim <记录ID> <手机号|QQ号|地址ID> - 填写领奖信息\n" +
		"/winners - 最新中奖\n" +
		"/phone <手机号> - 绑定手机号")
}

// HandlePhone handles the /phone command.
// Format: /phone <mobilephone>
func (h *AccountHandler) HandlePhone(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ 用法: /phone <手机号>\n例如: /phone 13800138000")
	}
	ctx, cancel := requestContext()
	defer cancel()

	if _, _, err := h.accountService.EnsureUser(ctx, sender.ID, displayName(sender)); err != nil {
		return replyError(c, "phone", err)
	}
	if err := h.accountService.SetMobilephone(ctx, sender.ID, args[0]); err != nil {
		return replyError(c, "phone", err)
	}
	return c.Reply("✅ 手机号已绑定")
}
