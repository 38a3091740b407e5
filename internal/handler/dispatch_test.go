package handler

import (
	"context"
	"fmt"
	"testing"

	"fishmarket-bot/internal/domain"
	"fishmarket-bot/internal/service"
	"fishmarket-bot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testChatID int64 = 42

func newTestHandler(api *testutil.MockCommerceAPI, sessions *testutil.MemorySessions) *Handler {
	return NewHandler(nil, service.NewShopService(api), sessions, testutil.NewTestLogger())
}

func catalogExpectation(api *testutil.MockCommerceAPI) {
	api.On("ListProducts", mock.Anything).Return([]domain.Product{
		testutil.NewTestProduct("p-salmon", "Salmon"),
		testutil.NewTestProduct("p-cod", "Cod"),
	}, nil)
}

func TestDispatch_FirstEventDefaultsToStart(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	catalogExpectation(api)
	sessions := testutil.NewMemorySessions()
	h := newTestHandler(api, sessions)

	c := testutil.NewTextContext(testChatID, "hello there")
	require.NoError(t, h.Dispatch(c))

	state, ok := sessions.Stored(testChatID)
	require.True(t, ok)
	assert.Equal(t, domain.StateMenu, state)
	require.Len(t, c.SentTexts(), 1)
	assert.Contains(t, c.SentTexts()[0], "fish market")
	api.AssertExpectations(t)
}

func TestDispatch_StartCommandResetsAnyState(t *testing.T) {
	for _, prior := range []domain.State{
		domain.StateMenu, domain.StateDescription, domain.StateCart, domain.StateEmail,
	} {
		t.Run(string(prior), func(t *testing.T) {
			api := new(testutil.MockCommerceAPI)
			catalogExpectation(api)
			sessions := testutil.NewMemorySessions()
			require.NoError(t, sessions.Set(context.Background(), testChatID, prior))
			h := newTestHandler(api, sessions)

			c := testutil.NewTextContext(testChatID, "/start")
			require.NoError(t, h.Dispatch(c))

			state, _ := sessions.Stored(testChatID)
			assert.Equal(t, domain.StateMenu, state)
			api.AssertExpectations(t)
		})
	}
}

func TestDispatch_MenuIgnoresPlainText(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	sessions := testutil.NewMemorySessions()
	require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateMenu))
	h := newTestHandler(api, sessions)

	c := testutil.NewTextContext(testChatID, "just chatting")
	require.NoError(t, h.Dispatch(c))

	state, _ := sessions.Stored(testChatID)
	assert.Equal(t, domain.StateMenu, state)
	assert.Empty(t, c.SentMessages)
}

func TestDispatch_MenuButtonShowsProductCard(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	api.On("GetProduct", mock.Anything, "p-salmon").Return(&domain.Product{
		ID:             "p-salmon",
		Name:           "Salmon",
		FormattedPrice: "$12.50",
		StockLevel:     17,
		MainImageID:    "file-1",
	}, nil)
	api.On("ImageURL", mock.Anything, "file-1").Return("https://cdn/salmon.jpg", nil)

	sessions := testutil.NewMemorySessions()
	require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateMenu))
	h := newTestHandler(api, sessions)

	c := testutil.NewCallbackContext(testChatID, "p-salmon")
	require.NoError(t, h.Dispatch(c))

	state, _ := sessions.Stored(testChatID)
	assert.Equal(t, domain.StateDescription, state)
	assert.True(t, c.Deleted, "menu message is replaced by the product card")
	require.Len(t, c.SentMessages, 1)
	api.AssertExpectations(t)
}

func TestDispatch_DescriptionAddsToCart(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	api.On("AddCartItem", mock.Anything, "42", "p-salmon", 5).Return(nil)

	sessions := testutil.NewMemorySessions()
	require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateDescription))
	h := newTestHandler(api, sessions)

	c := testutil.NewCallbackContext(testChatID, "\fp-salmon:5")
	require.NoError(t, h.Dispatch(c))

	state, _ := sessions.Stored(testChatID)
	assert.Equal(t, domain.StateDescription, state, "adding stays on the product card")
	require.Len(t, c.CbResponses, 1)
	assert.Equal(t, "Item added to the cart", c.CbResponses[0].Text)
	api.AssertExpectations(t)
}

func TestDispatch_DescriptionUnknownPayloadSelfLoops(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	sessions := testutil.NewMemorySessions()
	require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateDescription))
	h := newTestHandler(api, sessions)

	c := testutil.NewCallbackContext(testChatID, "wat")
	require.NoError(t, h.Dispatch(c))

	state, _ := sessions.Stored(testChatID)
	assert.Equal(t, domain.StateDescription, state)
	assert.Empty(t, c.SentMessages)
}

func TestDispatch_DescriptionCartButton(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	api.On("GetCart", mock.Anything, "42").Return(testutil.NewTestCart("$0.00"), nil)

	sessions := testutil.NewMemorySessions()
	require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateDescription))
	h := newTestHandler(api, sessions)

	c := testutil.NewCallbackContext(testChatID, "cart")
	require.NoError(t, h.Dispatch(c))

	state, _ := sessions.Stored(testChatID)
	assert.Equal(t, domain.StateCart, state)
	require.Len(t, c.SentTexts(), 1)
	assert.Equal(t, emptyCartText, c.SentTexts()[0])
	api.AssertExpectations(t)
}

func TestDispatch_CartReturnAlwaysRendersMenu(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	catalogExpectation(api)
	sessions := testutil.NewMemorySessions()
	require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateCart))
	h := newTestHandler(api, sessions)

	c := testutil.NewCallbackContext(testChatID, "return")
	require.NoError(t, h.Dispatch(c))

	state, _ := sessions.Stored(testChatID)
	assert.Equal(t, domain.StateMenu, state)
	require.Len(t, c.SentTexts(), 1)
	assert.Equal(t, menuText, c.SentTexts()[0])
	api.AssertExpectations(t)
}

func TestDispatch_CartCheckoutPromptsForEmail(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	sessions := testutil.NewMemorySessions()
	require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateCart))
	h := newTestHandler(api, sessions)

	c := testutil.NewCallbackContext(testChatID, "checkout")
	require.NoError(t, h.Dispatch(c))

	state, _ := sessions.Stored(testChatID)
	assert.Equal(t, domain.StateEmail, state)
	require.Len(t, c.SentTexts(), 1)
	assert.Contains(t, c.SentTexts()[0], "email")
}

func TestDispatch_CartRemovesItem(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	api.On("RemoveCartItem", mock.Anything, "42", "item-1").Return(nil)
	api.On("GetCart", mock.Anything, "42").Return(testutil.NewTestCart(
		"$8.00",
		domain.CartItem{ID: "item-2", Name: "Cod", Quantity: 1, UnitPrice: "$8.00", LinePrice: "$8.00"},
	), nil)

	sessions := testutil.NewMemorySessions()
	require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateCart))
	h := newTestHandler(api, sessions)

	c := testutil.NewCallbackContext(testChatID, "item-1")
	require.NoError(t, h.Dispatch(c))

	state, _ := sessions.Stored(testChatID)
	assert.Equal(t, domain.StateCart, state)
	require.Len(t, c.CbResponses, 1)
	assert.Equal(t, "Item removed from the cart", c.CbResponses[0].Text)
	api.AssertExpectations(t)
}

func TestDispatch_EmailValidation(t *testing.T) {
	t.Run("malformed email reprompts", func(t *testing.T) {
		api := new(testutil.MockCommerceAPI)
		sessions := testutil.NewMemorySessions()
		require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateEmail))
		h := newTestHandler(api, sessions)

		c := testutil.NewTextContext(testChatID, "bad@x")
		require.NoError(t, h.Dispatch(c))

		state, _ := sessions.Stored(testChatID)
		assert.Equal(t, domain.StateEmail, state)
		require.Len(t, c.SentTexts(), 1)
		assert.Equal(t, emailRetryText, c.SentTexts()[0])
	})

	t.Run("valid email places the order", func(t *testing.T) {
		api := new(testutil.MockCommerceAPI)
		api.On("GetOrCreateCustomer", mock.Anything, "jane.doe@example.com").Return("cust-1", nil)
		api.On("Checkout", mock.Anything, "42", "cust-1").Return(nil)
		api.On("ClearCart", mock.Anything, "42").Return(nil)

		sessions := testutil.NewMemorySessions()
		require.NoError(t, sessions.Set(context.Background(), testChatID, domain.StateEmail))
		h := newTestHandler(api, sessions)

		c := testutil.NewTextContext(testChatID, "jane.doe@example.com")
		require.NoError(t, h.Dispatch(c))

		state, _ := sessions.Stored(testChatID)
		assert.Equal(t, domain.StateStart, state)
		require.Len(t, c.SentTexts(), 1)
		assert.Equal(t, orderConfirmedText, c.SentTexts()[0])
		api.AssertExpectations(t)
	})
}

func TestDispatch_HandlerErrorLeavesStateUntouched(t *testing.T) {
	api := new(testutil.MockCommerceAPI)
	api.On("ListProducts", mock.Anything).Return(nil, fmt.Errorf("backend down"))
	sessions := testutil.NewMemorySessions()
	h := newTestHandler(api, sessions)

	c := testutil.NewTextContext(testChatID, "/start")
	require.NoError(t, h.Dispatch(c), "dispatch swallows handler errors after logging")

	_, ok := sessions.Stored(testChatID)
	assert.False(t, ok, "no transition is persisted when the handler fails")
	assert.Empty(t, c.SentMessages, "the user gets no reply on backend failure")
}
