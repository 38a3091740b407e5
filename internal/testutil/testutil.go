package testutil

import (
	"context"
	"sync"

	"fishmarket-bot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestProduct creates a test product
func NewTestProduct(id, name string) domain.Product {
	return domain.Product{
		ID:             id,
		Name:           name,
		FormattedPrice: "$10.00",
		StockLevel:     42,
		MainImageID:    "img-" + id,
	}
}

// NewTestCart creates a test cart with the given items
func NewTestCart(total string, items ...domain.CartItem) *domain.Cart {
	return &domain.Cart{Items: items, FormattedTotal: total}
}

// MemorySessions is an in-memory repository.SessionRepository
type MemorySessions struct {
	mu     sync.Mutex
	states map[int64]domain.State
}

// NewMemorySessions creates an empty in-memory session store
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{states: make(map[int64]domain.State)}
}

func (m *MemorySessions) Get(_ context.Context, chatID int64) (domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[chatID]
	if !ok {
		return domain.StateStart, nil
	}
	return state, nil
}

func (m *MemorySessions) Set(_ context.Context, chatID int64, state domain.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = state
	return nil
}

// Stored returns the raw stored state for assertions, and whether any
// state has been written for the chat at all.
func (m *MemorySessions) Stored(chatID int64) (domain.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[chatID]
	return state, ok
}

// FakeContext is a minimal tele.Context for handler tests. Only the
// methods the handlers touch are implemented; anything else panics via
// the embedded nil interface.
type FakeContext struct {
	tele.Context

	ChatID       int64
	IncomingText string
	IncomingCb   *tele.Callback

	SentMessages []interface{}
	CbResponses  []*tele.CallbackResponse
	Deleted      bool
}

// NewTextContext builds a context for an incoming text message.
func NewTextContext(chatID int64, text string) *FakeContext {
	return &FakeContext{ChatID: chatID, IncomingText: text}
}

// NewCallbackContext builds a context for an incoming button press.
func NewCallbackContext(chatID int64, payload string) *FakeContext {
	return &FakeContext{
		ChatID:     chatID,
		IncomingCb: &tele.Callback{Data: payload},
	}
}

func (f *FakeContext) Chat() *tele.Chat {
	return &tele.Chat{ID: f.ChatID}
}

func (f *FakeContext) Sender() *tele.User {
	return &tele.User{ID: f.ChatID}
}

func (f *FakeContext) Text() string {
	return f.IncomingText
}

func (f *FakeContext) Callback() *tele.Callback {
	return f.IncomingCb
}

func (f *FakeContext) Message() *tele.Message {
	return nil
}

func (f *FakeContext) Send(what interface{}, _ ...interface{}) error {
	f.SentMessages = append(f.SentMessages, what)
	return nil
}

func (f *FakeContext) Edit(what interface{}, _ ...interface{}) error {
	f.SentMessages = append(f.SentMessages, what)
	return nil
}

func (f *FakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.CbResponses = append(f.CbResponses, resp...)
	return nil
}

func (f *FakeContext) Delete() error {
	f.Deleted = true
	return nil
}

// SentTexts returns the plain text payloads sent through the context.
func (f *FakeContext) SentTexts() []string {
	texts := make([]string, 0, len(f.SentMessages))
	for _, msg := range f.SentMessages {
		if s, ok := msg.(string); ok {
			texts = append(texts, s)
		}
	}
	return texts
}
