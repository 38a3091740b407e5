package handler

import (
	"context"
	"fmt"
	"strings"

	"fishmarket-bot/internal/domain"
	"fishmarket-bot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	emptyCartText = "Cart is empty. Go on and throw in some stuff :D"

	emailPromptText = "To complete your order please enter your email address.\n" +
		"Our commercial department will issue the payment."

	emailRetryText = "Your email looks kinda messed. Please try again."

	orderConfirmedText = "Thank you for your order! We will contact you at once :D"
)

// handleCart processes the cart screen: back, checkout, or removal of
// the line item named by any other payload.
func (h *Handler) handleCart(ctx context.Context, c tele.Context) (domain.State, error) {
	cb := c.Callback()
	if cb == nil {
		return domain.StateCart, nil
	}

	switch payload := callbackPayload(cb); payload {
	case "return":
		h.dropKeyboard(c)
		if err := h.sendProductMenu(ctx, c); err != nil {
			return domain.StateCart, err
		}
		return domain.StateMenu, nil

	case "checkout":
		h.dropKeyboard(c)
		if err := c.Send(emailPromptText); err != nil {
			return domain.StateCart, err
		}
		return domain.StateEmail, nil

	default:
		if err := h.shop.RemoveFromCart(ctx, cartKey(c), payload); err != nil {
			return domain.StateCart, err
		}
		if err := c.Respond(&tele.CallbackResponse{Text: "Item removed from the cart"}); err != nil {
			h.logger.Debug("failed to acknowledge callback", zap.Error(err))
		}

		cart, err := h.shop.Cart(ctx, cartKey(c))
		if err != nil {
			return domain.StateCart, err
		}
		if err := h.editOrSend(c, cartText(cart), cartMarkup(cart)); err != nil {
			return domain.StateCart, err
		}
		return domain.StateCart, nil
	}
}

// handleEmail validates the checkout email and places the order.
// Anything that does not look like an email keeps the chat here.
func (h *Handler) handleEmail(ctx context.Context, c tele.Context) (domain.State, error) {
	if c.Callback() != nil {
		return domain.StateEmail, nil
	}

	email := strings.TrimSpace(c.Text())
	if !service.ValidEmail(email) {
		if err := c.Send(emailRetryText); err != nil {
			return domain.StateEmail, err
		}
		return domain.StateEmail, nil
	}

	if err := h.shop.PlaceOrder(ctx, cartKey(c), email); err != nil {
		return domain.StateEmail, err
	}

	if err := c.Send(orderConfirmedText); err != nil {
		return domain.StateEmail, err
	}
	return domain.StateStart, nil
}

// sendCartView renders the cart contents into the chat.
func (h *Handler) sendCartView(ctx context.Context, c tele.Context) error {
	cart, err := h.shop.Cart(ctx, cartKey(c))
	if err != nil {
		return err
	}
	return c.Send(cartText(cart), cartMarkup(cart))
}

// cartText renders the cart as one block per line item plus the total.
func cartText(cart *domain.Cart) string {
	if cart.IsEmpty() {
		return emptyCartText
	}

	blocks := make([]string, 0, len(cart.Items)+1)
	for _, item := range cart.Items {
		blocks = append(blocks, fmt.Sprintf(
			"%s\n%s per kg\n%dkg for %s",
			item.Name, item.UnitPrice, item.Quantity, item.LinePrice,
		))
	}
	blocks = append(blocks, "Total price: "+cart.FormattedTotal)
	return strings.Join(blocks, "\n\n")
}

// cartMarkup builds one removal button per item, a back button, and a
// checkout button when there is something to check out.
func cartMarkup(cart *domain.Cart) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(cart.Items)+2)
	for _, item := range cart.Items {
		rows = append(rows, markup.Row(markup.Data("Remove "+item.Name, item.ID)))
	}
	rows = append(rows, markup.Row(markup.Data("Back", "return")))
	if !cart.IsEmpty() {
		rows = append(rows, markup.Row(markup.Data("Checkout", "checkout")))
	}
	markup.Inline(rows...)
	return markup
}
