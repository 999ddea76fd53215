package httpx

import (
	"time"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/services"
)

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

type ProductResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Category       string            `json:"category"`
	Stock          int               `json:"stock"`
	Images         []string          `json:"images"`
	Features       []string          `json:"features"`
	Specifications map[string]string `json:"specifications,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// CheckoutItemDTO accepts both "productId" and the cart's "id" field.
type CheckoutItemDTO struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items           []CheckoutItemDTO      `json:"items"`
	ShippingAddress *services.AddressInput `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	OrderID   string `json:"orderId"`
	URL       string `json:"url,omitempty"`
}

type OrderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
}

type AddressResponse struct {
	FullName   string `json:"fullName,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type PaymentResultResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type OrderResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user"`
	Items           []OrderItemResponse    `json:"items"`
	ShippingAddress AddressResponse        `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentResult   *PaymentResultResponse `json:"paymentResult,omitempty"`
	Subtotal        float64                `json:"subtotal"`
	ShippingPrice   float64                `json:"shippingPrice"`
	Discount        float64                `json:"discount"`
	Tax             float64                `json:"tax"`
	Total           float64                `json:"total"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	Status          string                 `json:"status"`
	CreatedAt       time.Time              `json:"createdAt"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

type CartItemRequest struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartItemResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type CartResponse struct {
	Items         []CartItemResponse  `json:"items"`
	Subtotal      float64             `json:"subtotal"`
	Count         int                 `json:"count"`
	Notifications []cart.Notification `json:"notifications,omitempty"`
}

type UploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

func mapProduct(p *entity.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price.InexactFloat64(),
		Category:       p.Category,
		Stock:          p.Stock,
		Images:         images,
		Features:       features,
		Specifications: p.Specifications,
		CreatedAt:      p.CreatedAt,
	}
}

func mapProducts(products []entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, mapProduct(&products[i]))
	}
	return out
}

func mapOrder(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
			Image:     it.Image,
		})
	}
	a := o.ShippingAddress
	resp := OrderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: AddressResponse{
			FullName:   a.FullName,
			Street:     a.Street,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Phone:      a.Phone,
		},
		PaymentMethod: o.PaymentMethod,
		Subtotal:      o.Subtotal.InexactFloat64(),
		ShippingPrice: o.ShippingPrice.InexactFloat64(),
		Discount:      o.Discount.InexactFloat64(),
		Tax:           o.Tax.InexactFloat64(),
		Total:         o.Total.InexactFloat64(),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
	if pr := o.PaymentResult; pr != nil {
		resp.PaymentResult = &PaymentResultResponse{
			ID:           pr.ID,
			Status:       pr.Status,
			UpdateTime:   pr.UpdateTime,
			EmailAddress: pr.EmailAddress,
		}
	}
	return resp
}

func mapUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func mapPrincipal(p *auth.Principal) UserResponse {
	return UserResponse{ID: p.UserID, Name: p.Name, Email: p.Email, Role: p.Role}
}

func mapCart(m *cart.Manager, notes []cart.Notification) CartResponse {
	items := m.Items()
	out := make([]CartItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, CartItemResponse{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price.InexactFloat64(),
			Quantity: it.Quantity,
			Image:    it.Image,
		})
	}
	return CartResponse{
		Items:         out,
		Subtotal:      m.Subtotal().InexactFloat64(),
		Count:         m.Count(),
		Notifications: notes,
	}
}
