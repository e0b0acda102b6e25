package dashboard

import (
	"errors"
	"time"

	"github.com/meblomat/meblomat/internal/domain/carpenter"
	"github.com/meblomat/meblomat/internal/domain/client"
	"github.com/meblomat/meblomat/internal/domain/order"
	"github.com/meblomat/meblomat/internal/domain/user"
)

// Failure classes a RecordSource may report. Anything else is treated as an
// unexpected store error.
var (
	ErrSchemaMissing    = errors.New("database schema not provisioned")
	ErrStoreUnavailable = errors.New("database unreachable")
)

// Records is the raw material the aggregator works from, whether it came from
// the live store or the synthetic dataset.
type Records struct {
	Orders     []order.Order
	Carpenters []carpenter.Carpenter
	Clients    []client.Client
}

type ConnectionStatus string

const (
	StatusConnected     ConnectionStatus = "connected"
	StatusSchemaMissing ConnectionStatus = "schema-missing"
	StatusError         ConnectionStatus = "error"
)

type Source string

const (
	SourceDatabase Source = "database"
	SourceSample   Source = "sample"
)

// ConnectionState describes how the aggregator obtained its data for one
// request. Terminal per request; re-derived fresh on every call.
type ConnectionState struct {
	Status    ConnectionStatus `json:"status"`
	Label     string           `json:"label"`
	Details   string           `json:"details,omitempty"`
	Source    Source           `json:"source"`
	ErrorCode string           `json:"errorCode,omitempty"`
}

type Counts struct {
	Orders       int `json:"orders"`
	ActiveOrders int `json:"activeOrders"`
	UrgentOrders int `json:"urgentOrders"`
	Carpenters   int `json:"carpenters"`
	Clients      int `json:"clients"`
}

// Order is the flattened per-order view model with task completion counters.
type Order struct {
	ID             int64          `json:"id"`
	Reference      string         `json:"reference"`
	Title          string         `json:"title"`
	Status         order.Status   `json:"status"`
	Priority       order.Priority `json:"priority"`
	BudgetCents    *int64         `json:"budgetCents"`
	DueDate        *time.Time     `json:"dueDate"`
	CarpenterName  string         `json:"carpenterName,omitempty"`
	ClientName     string         `json:"clientName,omitempty"`
	WorkshopName   string         `json:"workshopName,omitempty"`
	TasksTotal     int            `json:"tasksTotal"`
	TasksCompleted int            `json:"tasksCompleted"`
}

type Carpenter struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone,omitempty"`
	Headline           string   `json:"headline,omitempty"`
	WorkshopName       string   `json:"workshopName,omitempty"`
	Skills             []string `json:"skills"`
	ActiveOrders       int      `json:"activeOrders"`
	CompletedThisMonth int      `json:"completedThisMonth"`
}

type Client struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Company     string     `json:"company,omitempty"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	OpenOrders  int        `json:"openOrders"`
	LastOrderAt *time.Time `json:"lastOrderAt"`
}

// Snapshot is everything derived from one set of records. It is always
// complete, never partial, and never cached across requests.
type Snapshot struct {
	Connection     ConnectionState            `json:"connection"`
	Counts         Counts                     `json:"counts"`
	OrdersByStatus map[order.Status][]Order   `json:"ordersByStatus"`
	Upcoming       []Order                    `json:"upcoming"`
	Carpenters     []Carpenter                `json:"carpenters"`
	Clients        []Client                   `json:"clients"`
}

type Data struct {
	Viewer user.Authenticated `json:"viewer"`
	Snapshot
}
