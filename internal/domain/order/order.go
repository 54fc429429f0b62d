package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
)

// Status of an order as a whole
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Order is the aggregate that owns its items
type Order struct {
	shared.BaseEntity
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Status        Status
	Items         []OrderItem
}

// NewOrder creates a pending order. An empty order number is generated.
func NewOrder(orderNumber, customerName, customerEmail, customerPhone string) (*Order, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, shared.ErrInvalidInput.WithMessage("customer name cannot be empty")
	}

	o := &Order{
		BaseEntity:    shared.NewBaseEntity(),
		OrderNumber:   strings.TrimSpace(orderNumber),
		CustomerName:  customerName,
		CustomerEmail: strings.TrimSpace(customerEmail),
		CustomerPhone: strings.TrimSpace(customerPhone),
		Status:        StatusPending,
	}
	if o.OrderNumber == "" {
		o.OrderNumber = GenerateOrderNumber(o.CreatedAt)
	}
	return o, nil
}

// GenerateOrderNumber returns ORD-YYYYMMDD-XXXXXX
func GenerateOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}

// AddItem appends an item at the next position.
// Items with neither code nor description are skipped and reported as false.
func (o *Order) AddItem(in matching.Input) bool {
	if !in.HasText() {
		return false
	}
	item := newOrderItem(o.ID, len(o.Items)+1, in)
	o.Items = append(o.Items, *item)
	return true
}

// ItemIDs returns item identifiers in position order
func (o *Order) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for i := range o.Items {
		ids[i] = o.Items[i].ID
	}
	return ids
}
