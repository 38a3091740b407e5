// Package moltin is a thin client for the Elastic Path ("Moltin")
// commerce REST API: catalog reads, cart line mutations, customer
// upsert and checkout. Authentication is a client-credentials bearer
// token cached inside the client and renewed lazily on expiry.
package moltin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fishmarket-bot/internal/domain"
)

const placeholderCustomerName = "Anonymous Customer"

// Client performs authenticated calls against the commerce backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *tokenManager
}

// NewClient creates a client for the given API base URL using the
// provided OAuth client credentials.
func NewClient(baseURL, clientID, clientSecret string) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		tokens:     newTokenManager(httpClient, baseURL, clientID, clientSecret),
	}
}

// envelope is the {"data": ...} wrapper the API uses on mutating calls.
type envelope struct {
	Data any `json:"data"`
}

// do performs one API call under /v2, attaching the bearer token and
// decoding the response body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + "/v2/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body *bytes.Buffer
	if payload != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(envelope{Data: payload}); err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, u, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	}
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

type productData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Meta        struct {
		DisplayPrice struct {
			WithTax struct {
				Formatted string `json:"formatted"`
			} `json:"with_tax"`
		} `json:"display_price"`
		Stock struct {
			Level int `json:"level"`
		} `json:"stock"`
	} `json:"meta"`
	Relationships struct {
		MainImage struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"main_image"`
	} `json:"relationships"`
}

func (d *productData) toDomain() domain.Product {
	return domain.Product{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		FormattedPrice: d.Meta.DisplayPrice.WithTax.Formatted,
		StockLevel:     d.Meta.Stock.Level,
		MainImageID:    d.Relationships.MainImage.Data.ID,
	}
}

// ListProducts returns the catalog in backend order. Only id and name
// are guaranteed to be populated for every entry.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp struct {
		Data []productData `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "products", nil, nil, &resp); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(resp.Data))
	for i := range resp.Data {
		products = append(products, resp.Data[i].toDomain())
	}
	return products, nil
}

// GetProduct returns the full record for one product.
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var resp struct {
		Data productData `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "products/"+productID, nil, nil, &resp); err != nil {
		return nil, err
	}
	product := resp.Data.toDomain()
	return &product, nil
}

// ImageURL resolves a stored file id to its absolute URL.
func (c *Client) ImageURL(ctx context.Context, fileID string) (string, error) {
	var resp struct {
		Data struct {
			Link struct {
				Href string `json:"href"`
			} `json:"link"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "files/"+fileID, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Data.Link.Href, nil
}

// AddCartItem puts quantity units of a product into the cart.
func (c *Client) AddCartItem(ctx context.Context, cartID, productID string, quantity int) error {
	payload := struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Quantity int    `json:"quantity"`
	}{ID: productID, Type: "cart_item", Quantity: quantity}

	return c.do(ctx, http.MethodPost, "carts/"+cartID+"/items", nil, payload, nil)
}

// RemoveCartItem deletes one line item from the cart.
func (c *Client) RemoveCartItem(ctx context.Context, cartID, itemID string) error {
	return c.do(ctx, http.MethodDelete, "carts/"+cartID+"/items/"+itemID, nil, nil, nil)
}

// GetCart returns the cart's line items and its formatted total.
func (c *Client) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var resp struct {
		Data []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
			Meta     struct {
				DisplayPrice struct {
					WithTax struct {
						Unit struct {
							Formatted string `json:"formatted"`
						} `json:"unit"`
						Value struct {
							Formatted string `json:"formatted"`
						} `json:"value"`
					} `json:"with_tax"`
				} `json:"display_price"`
			} `json:"meta"`
		} `json:"data"`
		Meta struct {
			DisplayPrice struct {
				WithTax struct {
					Formatted string `json:"formatted"`
				} `json:"with_tax"`
			} `json:"display_price"`
		} `json:"meta"`
	}
	if err := c.do(ctx, http.MethodGet, "carts/"+cartID+"/items", nil, nil, &resp); err != nil {
		return nil, err
	}

	cart := &domain.Cart{
		Items:          make([]domain.CartItem, 0, len(resp.Data)),
		FormattedTotal: resp.Meta.DisplayPrice.WithTax.Formatted,
	}
	for _, item := range resp.Data {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Meta.DisplayPrice.WithTax.Unit.Formatted,
			LinePrice: item.Meta.DisplayPrice.WithTax.Value.Formatted,
		})
	}
	return cart, nil
}

// ClearCart removes every line item from the cart.
func (c *Client) ClearCart(ctx context.Context, cartID string) error {
	return c.do(ctx, http.MethodDelete, "carts/"+cartID, nil, nil, nil)
}

// GetOrCreateCustomer looks a customer up by email and returns its id,
// creating the record with a placeholder name when the lookup comes
// back empty. If duplicates exist the first match wins.
func (c *Client) GetOrCreateCustomer(ctx context.Context, email string) (string, error) {
	query := url.Values{"filter": {fmt.Sprintf("eq(email,%s)", email)}}

	var lookup struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "customers", query, nil, &lookup); err != nil {
		return "", err
	}
	if len(lookup.Data) > 0 {
		return lookup.Data[0].ID, nil
	}

	payload := struct {
		Type  string `json:"type"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}{Type: "customer", Name: placeholderCustomerName, Email: email}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "customers", nil, payload, &created); err != nil {
		return "", err
	}
	return created.Data.ID, nil
}

type checkoutAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Line1     string `json:"line_1"`
	Region    string `json:"region"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// placeholderAddress stands in for real address collection, which the
// bot does not do; the commercial department follows up by email.
func placeholderAddress() checkoutAddress {
	return checkoutAddress{
		FirstName: "na",
		LastName:  "na",
		Line1:     "na",
		Region:    "na",
		Postcode:  "na",
		Country:   "na",
	}
}

// Checkout converts the cart into an order for the given customer.
func (c *Client) Checkout(ctx context.Context, cartID, customerID string) error {
	payload := struct {
		Customer        map[string]string `json:"customer"`
		BillingAddress  checkoutAddress   `json:"billing_address"`
		ShippingAddress checkoutAddress   `json:"shipping_address"`
	}{
		Customer:        map[string]string{"id": customerID},
		BillingAddress:  placeholderAddress(),
		ShippingAddress: placeholderAddress(),
	}

	return c.do(ctx, http.MethodPost, "carts/"+cartID+"/checkout", nil, payload, nil)
}
