package order

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending          Status = "PENDING"
	StatusInProgress       Status = "IN_PROGRESS"
	StatusReadyForDelivery Status = "READY_FOR_DELIVERY"
	StatusCompleted        Status = "COMPLETED"
	StatusCancelled        Status = "CANCELLED"
)

// Statuses in pipeline order; dashboard buckets follow this order.
var Statuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusReadyForDelivery,
	StatusCompleted,
	StatusCancelled,
}

// Closed reports whether the status is terminal. Closed orders are excluded
// from active/open counts everywhere.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusReadyForDelivery, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskBlocked    TaskStatus = "BLOCKED"
)

var ErrNotFound = errors.New("order not found")

// Ref is a weak reference to a related entity, carried only for display.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Task struct {
	ID      int64      `json:"id"`
	Title   string     `json:"title"`
	Status  TaskStatus `json:"status"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}

type Order struct {
	ID          int64      `json:"id"`
	Reference   string     `json:"reference"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	BudgetCents *int64     `json:"budgetCents,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Carpenter   *Ref       `json:"carpenter,omitempty"`
	Client      *Ref       `json:"client,omitempty"`
	Workshop    *Ref       `json:"workshop,omitempty"`
	Tasks       []Task     `json:"tasks"`
}

// Stub is the slim projection joined onto carpenters and clients for the
// dashboard counters.
type Stub struct {
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}
