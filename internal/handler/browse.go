package handler

import (
	"context"
	"fmt"

	"fishmarket-bot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	welcomeText = "Welcome to our humble fish market.\nWhat product are you interested in?"
	menuText    = "What product are you interested in?"
)

// handleStart greets the chat and renders the product menu.
func (h *Handler) handleStart(ctx context.Context, c tele.Context) (domain.State, error) {
	markup, err := h.productMenu(ctx)
	if err != nil {
		return domain.StateStart, err
	}
	if err := c.Send(welcomeText, markup); err != nil {
		return domain.StateStart, err
	}
	return domain.StateMenu, nil
}

// handleMenu reacts to a product button press with the product card.
// Plain text in this state is ignored.
func (h *Handler) handleMenu(ctx context.Context, c tele.Context) (domain.State, error) {
	cb := c.Callback()
	if cb == nil {
		return domain.StateMenu, nil
	}
	productID := callbackPayload(cb)

	// The menu message is replaced by the product card.
	if err := c.Delete(); err != nil {
		h.logger.Debug("failed to delete menu message", zap.Error(err))
	}

	product, imageURL, err := h.shop.ProductCard(ctx, productID)
	if err != nil {
		return domain.StateMenu, err
	}

	caption := fmt.Sprintf(
		"%s\n\n%s per kg\n%d kg in stock",
		product.Name, product.FormattedPrice, product.StockLevel,
	)
	photo := &tele.Photo{File: tele.FromURL(imageURL), Caption: caption}

	if err := c.Send(photo, productCardMarkup(product.ID)); err != nil {
		return domain.StateMenu, err
	}
	return domain.StateDescription, nil
}

// handleDescription processes the product card buttons: quantity
// choices add to the cart, "cart" and "return" switch screens.
func (h *Handler) handleDescription(ctx context.Context, c tele.Context) (domain.State, error) {
	cb := c.Callback()
	if cb == nil {
		return domain.StateDescription, nil
	}

	switch payload := callbackPayload(cb); payload {
	case "cart":
		h.dropKeyboard(c)
		if err := h.sendCartView(ctx, c); err != nil {
			return domain.StateDescription, err
		}
		return domain.StateCart, nil

	case "return":
		h.dropKeyboard(c)
		if err := h.sendProductMenu(ctx, c); err != nil {
			return domain.StateDescription, err
		}
		return domain.StateMenu, nil

	default:
		productID, quantity, ok := parseAddPayload(payload)
		if !ok {
			return domain.StateDescription, nil
		}
		if err := h.shop.AddToCart(ctx, cartKey(c), productID, quantity); err != nil {
			return domain.StateDescription, err
		}
		if err := c.Respond(&tele.CallbackResponse{Text: "Item added to the cart"}); err != nil {
			h.logger.Debug("failed to acknowledge callback", zap.Error(err))
		}
		return domain.StateDescription, nil
	}
}

// sendProductMenu renders the catalog keyboard into the chat.
func (h *Handler) sendProductMenu(ctx context.Context, c tele.Context) error {
	markup, err := h.productMenu(ctx)
	if err != nil {
		return err
	}
	return c.Send(menuText, markup)
}

// productMenu builds the one-button-per-product keyboard, in backend
// catalog order.
func (h *Handler) productMenu(ctx context.Context) (*tele.ReplyMarkup, error) {
	products, err := h.shop.Menu(ctx)
	if err != nil {
		return nil, err
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, markup.Row(markup.Data(p.Name, p.ID)))
	}
	markup.Inline(rows...)
	return markup, nil
}

// productCardMarkup builds the quantity/back/cart keyboard under a
// product card.
func productCardMarkup(productID string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("1 kg", productID+":1"),
			markup.Data("5 kg", productID+":5"),
			markup.Data("10 kg", productID+":10"),
		),
		markup.Row(markup.Data("Back", "return")),
		markup.Row(markup.Data("Cart", "cart")),
	)
	return markup
}
