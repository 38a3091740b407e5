package service

import (
	"context"
	"fmt"

	"fishmarket-bot/internal/domain"
)

// CommerceAPI is the slice of the commerce backend the shop uses.
// Implemented by moltin.Client; mocked in tests.
type CommerceAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ImageURL(ctx context.Context, fileID string) (string, error)
	AddCartItem(ctx context.Context, cartID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, cartID, itemID string) error
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, cartID string) error
	GetOrCreateCustomer(ctx context.Context, email string) (string, error)
	Checkout(ctx context.Context, cartID, customerID string) error
}

// ShopService handles catalog, cart and checkout logic
type ShopService struct {
	api CommerceAPI
}

// NewShopService creates a new shop service
func NewShopService(api CommerceAPI) *ShopService {
	return &ShopService{api: api}
}

// Menu returns the catalog in backend order.
func (s *ShopService) Menu(ctx context.Context) ([]domain.Product, error) {
	return s.api.ListProducts(ctx)
}

// ProductCard returns one product together with its resolved main
// image URL.
func (s *ShopService) ProductCard(ctx context.Context, productID string) (*domain.Product, string, error) {
	product, err := s.api.GetProduct(ctx, productID)
	if err != nil {
		return nil, "", err
	}

	imageURL, err := s.api.ImageURL(ctx, product.MainImageID)
	if err != nil {
		return nil, "", err
	}

	return product, imageURL, nil
}

// AddToCart puts quantity units of a product into the chat's cart.
func (s *ShopService) AddToCart(ctx context.Context, cartID, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return s.api.AddCartItem(ctx, cartID, productID, quantity)
}

// Cart returns the current cart contents.
func (s *ShopService) Cart(ctx context.Context, cartID string) (*domain.Cart, error) {
	return s.api.GetCart(ctx, cartID)
}

// RemoveFromCart deletes one line item from the chat's cart.
func (s *ShopService) RemoveFromCart(ctx context.Context, cartID, itemID string) error {
	return s.api.RemoveCartItem(ctx, cartID, itemID)
}

// PlaceOrder resolves the customer by email, checks the cart out and
// empties it. Each step fails fast; a checkout that succeeded before a
// failed cart clear is not rolled back.
func (s *ShopService) PlaceOrder(ctx context.Context, cartID, email string) error {
	customerID, err := s.api.GetOrCreateCustomer(ctx, email)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}

	if err := s.api.Checkout(ctx, cartID, customerID); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if err := s.api.ClearCart(ctx, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}
