package orders

import (
	"sync"
	"time"
)

// Order is a customer order.
type Order struct {
	ID           int        `json:"id"`
	CustomerName string     `json:"customerName"`
	Product      string     `json:"product"`
	Amount       float64    `json:"amount"`
	Status       string     `json:"status"`
	CreatedBy    string     `json:"createdBy,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedBy    string     `json:"updatedBy,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Order status values.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Repository is a mutex-guarded in-memory order store. Persistence is out
// of scope for this service; restarts reset it to the seed data.
type Repository struct {
	mu     sync.RWMutex
	orders map[int]*Order
	nextID int
}

// NewRepository creates a repository seeded with demo orders.
func NewRepository() *Repository {
	r := &Repository{
		orders: make(map[int]*Order),
		nextID: 1,
	}
	r.seed()
	return r
}

func (r *Repository) seed() {
	seeds := []Order{
		{CustomerName: "John Doe", Product: "Laptop", Amount: 1200.00, Status: StatusPending},
		{CustomerName: "Jane Smith", Product: "Mouse", Amount: 25.50, Status: StatusCompleted},
		{CustomerName: "Bob Johnson", Product: "Keyboard", Amount: 75.00, Status: StatusPending},
	}
	for _, seed := range seeds {
		order := seed
		order.ID = r.nextID
		r.orders[order.ID] = &order
		r.nextID++
	}
}

// List returns all orders sorted by ID.
func (r *Repository) List() []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Order, 0, len(r.orders))
	for id := 1; id < r.nextID; id++ {
		if order, ok := r.orders[id]; ok {
			result = append(result, *order)
		}
	}
	return result
}

// Get returns the order with the given ID.
func (r *Repository) Get(id int) (Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return Order{}, false
	}
	return *order, true
}

// Create adds a new pending order and returns it.
func (r *Repository) Create(customerName, product string, amount float64, createdBy string) Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	order := &Order{
		ID:           r.nextID,
		CustomerName: customerName,
		Product:      product,
		Amount:       amount,
		Status:       StatusPending,
		CreatedBy:    createdBy,
		CreatedAt:    &now,
	}
	r.orders[order.ID] = order
	r.nextID++
	return *order
}

// UpdateStatus sets the status of an existing order.
func (r *Repository) UpdateStatus(id int, status, updatedBy string) (Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return Order{}, false
	}

	now := time.Now().UTC()
	order.Status = status
	order.UpdatedBy = updatedBy
	order.UpdatedAt = &now
	return *order, true
}

// Delete removes the order with the given ID.
func (r *Repository) Delete(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return false
	}
	delete(r.orders, id)
	return true
}
