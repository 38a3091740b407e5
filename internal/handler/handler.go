package handler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"fishmarket-bot/internal/domain"
	"fishmarket-bot/internal/repository"
	"fishmarket-bot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler routes every incoming update through the conversation state
// machine: read the chat's state, run the matching state handler,
// persist the state it returns.
type Handler struct {
	bot      *tele.Bot
	shop     *service.ShopService
	sessions repository.SessionRepository
	logger   *zap.Logger

	// Per-chat locks so two updates for one chat cannot interleave
	// their read-modify-write of session state.
	chatLocks map[int64]*sync.Mutex
	chatMux   sync.Mutex
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	shop *service.ShopService,
	sessions repository.SessionRepository,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:       bot,
		shop:      shop,
		sessions:  sessions,
		logger:    logger,
		chatLocks: make(map[int64]*sync.Mutex),
	}
}

// RegisterHandlers registers all bot handlers. Commands, plain text
// and button callbacks all funnel into the same dispatch.
func (h *Handler) RegisterHandlers() {
	h.bot.Handle("/start", h.Dispatch)
	h.bot.Handle(tele.OnText, h.Dispatch)
	h.bot.Handle(tele.OnCallback, h.Dispatch)
}

// Dispatch handles one update. A handler error is logged (and thereby
// mirrored to the operator chat) and leaves the stored state untouched;
// the user gets no reply in that case.
func (h *Handler) Dispatch(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	chatID := chat.ID

	lock := h.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	ctx := context.Background()

	// "/start" is an explicit reset regardless of stored state.
	state := domain.StateStart
	if c.Callback() != nil || c.Text() != "/start" {
		stored, err := h.sessions.Get(ctx, chatID)
		if err != nil {
			h.logger.Error("failed to read session state",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			return nil
		}
		state = stored
	}

	var fn func(ctx context.Context, c tele.Context) (domain.State, error)
	switch state {
	case domain.StateMenu:
		fn = h.handleMenu
	case domain.StateDescription:
		fn = h.handleDescription
	case domain.StateCart:
		fn = h.handleCart
	case domain.StateEmail:
		fn = h.handleEmail
	default:
		fn = h.handleStart
	}

	next, err := fn(ctx, c)
	if err != nil {
		h.logger.Error("handler failed",
			zap.Int64("chat_id", chatID),
			zap.String("state", string(state)),
			zap.Error(err),
		)
		return nil
	}

	if err := h.sessions.Set(ctx, chatID, next); err != nil {
		h.logger.Error("failed to persist session state",
			zap.Int64("chat_id", chatID),
			zap.String("state", string(next)),
			zap.Error(err),
		)
	}
	return nil
}

// chatLock returns the lock serializing updates for one chat.
func (h *Handler) chatLock(chatID int64) *sync.Mutex {
	h.chatMux.Lock()
	defer h.chatMux.Unlock()

	lock, exists := h.chatLocks[chatID]
	if !exists {
		lock = &sync.Mutex{}
		h.chatLocks[chatID] = lock
	}
	return lock
}

// cleanCallbackData removes all non-printable characters from callback
// data (telebot frames stored-callback data with a leading \f).
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// callbackPayload extracts the opaque button payload from a callback.
// Telebot resolves simple payloads into Unique and leaves composite
// ones (for example "productID:5") in Data.
func callbackPayload(cb *tele.Callback) string {
	if payload := cleanCallbackData(cb.Data); payload != "" {
		return payload
	}
	return cleanCallbackData(cb.Unique)
}

// parseAddPayload splits a "<productID>:<quantity>" button payload.
func parseAddPayload(payload string) (productID string, quantity int, ok bool) {
	productID, qtyStr, found := strings.Cut(payload, ":")
	if !found || productID == "" {
		return "", 0, false
	}
	quantity, err := strconv.Atoi(qtyStr)
	if err != nil || quantity < 1 {
		return "", 0, false
	}
	return productID, quantity, true
}

// cartKey is the backend cart id for a chat: the chat id itself, so
// cart and conversation state share an identity.
func cartKey(c tele.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}

// dropKeyboard removes the inline keyboard from the message that
// carried the pressed button, so stale buttons cannot fire twice.
// Best effort.
func (h *Handler) dropKeyboard(c tele.Context) {
	msg := c.Message()
	if msg == nil || h.bot == nil {
		return
	}
	if _, err := h.bot.EditReplyMarkup(msg, nil); err != nil {
		h.logger.Debug("failed to drop keyboard", zap.Error(err))
	}
}

// editOrSend rewrites the callback's message in place, falling back to
// a fresh message when editing is not possible.
func (h *Handler) editOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil || c.Message() == nil {
		return c.Send(text, markup)
	}
	if err := c.Edit(text, markup); err != nil {
		h.logger.Debug("failed to edit message, sending new", zap.Error(err))
		return c.Send(text, markup)
	}
	return nil
}
