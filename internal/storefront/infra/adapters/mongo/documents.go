package mongo

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// Amounts are stored as BSON doubles for compatibility with documents
// written by earlier versions of the store.

type productDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Description    string             `bson:"description"`
	Price          float64            `bson:"price"`
	Category       string             `bson:"category"`
	Stock          int                `bson:"stock"`
	Images         []string           `bson:"images"`
	Features       []string           `bson:"features"`
	Specifications map[string]string  `bson:"specifications,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

type orderItemDoc struct {
	Product  primitive.ObjectID `bson:"product"`
	Name     string             `bson:"name"`
	Quantity int                `bson:"quantity"`
	Price    float64            `bson:"price"`
	Image    string             `bson:"image"`
}

type shippingAddressDoc struct {
	FullName   string `bson:"fullName,omitempty"`
	Street     string `bson:"street"`
	City       string `bson:"city"`
	State      string `bson:"state"`
	PostalCode string `bson:"postalCode"`
	Country    string `bson:"country"`
	Phone      string `bson:"phone,omitempty"`
}

type paymentResultDoc struct {
	ID           string `bson:"id"`
	Status       string `bson:"status"`
	UpdateTime   string `bson:"update_time"`
	EmailAddress string `bson:"email_address"`
}

type orderDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	User            primitive.ObjectID `bson:"user"`
	Items           []orderItemDoc     `bson:"items"`
	ShippingAddress shippingAddressDoc `bson:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod"`
	PaymentResult   *paymentResultDoc  `bson:"paymentResult,omitempty"`
	Subtotal        float64            `bson:"subtotal"`
	ShippingPrice   float64            `bson:"shippingPrice"`
	Discount        float64            `bson:"discount"`
	Tax             float64            `bson:"tax"`
	Total           float64            `bson:"total"`
	IsPaid          bool               `bson:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty"`
	Status          string             `bson:"status"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password,omitempty"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// money stores the amount as submitted; totals are already rounded by Pricing.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func fromMoney(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func toProductDoc(p *entity.Product) productDoc {
	doc := productDoc{
		Name:           p.Name,
		Description:    p.Description,
		Price:          money(p.Price),
		Category:       p.Category,
		Stock:          p.Stock,
		Images:         nonNil(p.Images),
		Features:       nonNil(p.Features),
		Specifications: p.Specifications,
		CreatedAt:      p.CreatedAt.UTC(),
	}
	if oid, ok := objectID(p.ID); ok {
		doc.ID = oid
	}
	return doc
}

func (d productDoc) toEntity() entity.Product {
	return entity.Product{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Description:    d.Description,
		Price:          fromMoney(d.Price),
		Category:       d.Category,
		Stock:          d.Stock,
		Images:         d.Images,
		Features:       d.Features,
		Specifications: d.Specifications,
		CreatedAt:      d.CreatedAt,
	}
}

func toOrderDoc(o *entity.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		pid, _ := objectID(it.ProductID)
		items = append(items, orderItemDoc{
			Product:  pid,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    money(it.Price),
			Image:    it.Image,
		})
	}
	a := o.ShippingAddress
	doc := orderDoc{
		Items: items,
		ShippingAddress: shippingAddressDoc{
			FullName:   a.FullName,
			Street:     a.Street,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Phone:      a.Phone,
		},
		PaymentMethod: o.PaymentMethod,
		Subtotal:      money(o.Subtotal),
		ShippingPrice: money(o.ShippingPrice),
		Discount:      money(o.Discount),
		Tax:           money(o.Tax),
		Total:         money(o.Total),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt.UTC(),
	}
	if oid, ok := objectID(o.ID); ok {
		doc.ID = oid
	}
	if uid, ok := objectID(o.UserID); ok {
		doc.User = uid
	}
	if pr := o.PaymentResult; pr != nil {
		doc.PaymentResult = &paymentResultDoc{
			ID:           pr.ID,
			Status:       pr.Status,
			UpdateTime:   pr.UpdateTime,
			EmailAddress: pr.EmailAddress,
		}
	}
	return doc
}

func (d orderDoc) toEntity() entity.Order {
	items := make([]entity.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, entity.OrderItem{
			ProductID: it.Product.Hex(),
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     fromMoney(it.Price),
			Image:     it.Image,
		})
	}
	a := d.ShippingAddress
	o := entity.Order{
		ID:     d.ID.Hex(),
		UserID: d.User.Hex(),
		Items:  items,
		ShippingAddress: entity.ShippingAddress{
			FullName:   a.FullName,
			Street:     a.Street,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Phone:      a.Phone,
		},
		PaymentMethod: d.PaymentMethod,
		Subtotal:      fromMoney(d.Subtotal),
		ShippingPrice: fromMoney(d.ShippingPrice),
		Discount:      fromMoney(d.Discount),
		Tax:           fromMoney(d.Tax),
		Total:         fromMoney(d.Total),
		IsPaid:        d.IsPaid,
		PaidAt:        d.PaidAt,
		Status:        entity.OrderStatus(d.Status),
		CreatedAt:     d.CreatedAt,
	}
	if o.Status == "" {
		o.Status = entity.StatusPending
	}
	if pr := d.PaymentResult; pr != nil {
		o.PaymentResult = &entity.PaymentResult{
			ID:           pr.ID,
			Status:       pr.Status,
			UpdateTime:   pr.UpdateTime,
			EmailAddress: pr.EmailAddress,
		}
	}
	return o
}

func toUserDoc(u *entity.User) userDoc {
	return userDoc{
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func (d userDoc) toEntity() entity.User {
	role := entity.Role(d.Role)
	if role == "" {
		role = entity.RoleUser
	}
	return entity.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         role,
		CreatedAt:    d.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
