package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"lucky-draw/internal/config"
)

// stubContext answers the few Context methods the middleware touches.
type stubContext struct {
	tele.Context
	chat    *tele.Chat
	sender  *tele.User
	text    string
	replies []interface{}
}

func (s *stubContext) Chat() *tele.Chat   { return s.chat }
func (s *stubContext) Sender() *tele.User { return s.sender }
func (s *stubContext) Text() string       { return s.text }

func (s *stubContext) Reply(what interface{}, _ ...interface{}) error {
	s.replies = append(s.replies, what)
	return nil
}

func groupChat(id int64) *tele.Chat { return &tele.Chat{ID: id, Type: tele.ChatGroup} }
func privateChat(id int64) *tele.Chat { return &tele.Chat{ID: id, Type: tele.ChatPrivate} }

func run(mw tele.MiddlewareFunc, c tele.Context) bool {
	called := false
	_ = mw(func(tele.Context) error {
		called = true
		return nil
	})(c)
	return called
}

func TestAdminMiddleware(t *testing.T) {
	cfg := &config.Config{Admin: config.AdminConfig{IDs: []int64{1}}}
	mw := AdminMiddleware(cfg)

	admin := &stubContext{chat: privateChat(1), sender: &tele.User{ID: 1}, text: "/void 3"}
	assert.True(t, run(mw, admin))
	assert.Empty(t, admin.replies)

	user := &stubContext{chat: privateChat(2), sender: &tele.User{ID: 2}, text: "/void 3"}
	assert.False(t, run(mw, user))
	assert.Len(t, user.replies, 1)

	assert.False(t, run(mw, &stubContext{}))
}

func TestWhitelistMiddleware_GroupUnlocksPrivateChat(t *testing.T) {
	cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: []int64{-100}}}
	mw := whitelist(cfg, NewPrivateUsers())
	sender := &tele.User{ID: 42}

	assert.False(t, run(mw, &stubContext{chat: privateChat(42), sender: sender}), "unknown user in private chat")
	assert.False(t, run(mw, &stubContext{chat: groupChat(-200), sender: sender}), "non-whitelisted group")
	assert.True(t, run(mw, &stubContext{chat: groupChat(-100), sender: sender}))
	assert.True(t, run(mw, &stubContext{chat: privateChat(42), sender: sender}), "user seen in whitelisted group")
}

func TestWhitelistMiddleware_AdminsAlwaysReachPrivateChat(t *testing.T) {
	cfg := &config.Config{
		Admin:     config.AdminConfig{IDs: []int64{1}},
		Whitelist: config.WhitelistConfig{Chats: []int64{-100}},
	}
	mw := whitelist(cfg, NewPrivateUsers())

	assert.True(t, run(mw, &stubContext{chat: privateChat(1), sender: &tele.User{ID: 1}}))
}

func TestWhitelistMiddleware_EmptyWhitelist(t *testing.T) {
	mw := whitelist(&config.Config{}, NewPrivateUsers())

	assert.True(t, run(mw, &stubContext{chat: privateChat(9), sender: &tele.User{ID: 9}}))
	assert.True(t, run(mw, &stubContext{chat: groupChat(-5), sender: &tele.User{ID: 9}}))
	assert.False(t, run(mw, &stubContext{chat: groupChat(-5)}))
}

// TestAdminPermissionProperty checks the admin route passes exactly the
// configured operators.
func TestAdminPermissionProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		adminIDs := rapid.SliceOfN(rapid.Int64Range(1, 1000000000), 1, 10).Draw(rt, "adminIDs")
		userID := rapid.Int64Range(1, 1000000000).Draw(rt, "userID")
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		expected := false
		for _, id := range adminIDs {
			if id == userID {
				expected = true
				break
			}
		}

		c := &stubContext{chat: privateChat(userID), sender: &tele.User{ID: userID}}
		if got := run(AdminMiddleware(cfg), c); got != expected {
			rt.Fatalf("userID=%d adminIDs=%v: expected pass=%v, got %v", userID, adminIDs, expected, got)
		}
	})
}

// TestWhitelistGroupProperty checks group commands pass exactly for the
// whitelisted chats.
func TestWhitelistGroupProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		chats := rapid.SliceOfN(rapid.Int64Range(-1000000, -1), 1, 10).Draw(rt, "chats")
		chatID := rapid.Int64Range(-1000000, -1).Draw(rt, "chatID")
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chats}}

		expected := false
		for _, id := range chats {
			if id == chatID {
				expected = true
				break
			}
		}

		c := &stubContext{chat: groupChat(chatID), sender: &tele.User{ID: 7}}
		if got := run(whitelist(cfg, NewPrivateUsers()), c); got != expected {
			rt.Fatalf("chatID=%d chats=%v: expected pass=%v, got %v", chatID, chats, expected, got)
		}
	})
}
