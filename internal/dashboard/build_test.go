package dashboard

import (
	"testing"
	"time"

	"github.com/meblomat/meblomat/internal/domain/carpenter"
	"github.com/meblomat/meblomat/internal/domain/client"
	"github.com/meblomat/meblomat/internal/domain/order"
)

func datePtr(t time.Time) *time.Time { return &t }

func makeOrder(id int64, title string, status order.Status, due *time.Time) order.Order {
	return order.Order{
		ID:        id,
		Reference: "ORD-" + title,
		Title:     title,
		Status:    status,
		Priority:  order.PriorityMedium,
		CreatedAt: time.Now().Add(-time.Duration(id) * time.Hour),
		DueDate:   due,
		Tasks:     []order.Task{},
	}
}

func TestBuildSnapshot_PartitionsEveryStatus(t *testing.T) {
	now := time.Now()

	records := Records{
		Orders: []order.Order{
			makeOrder(1, "kuchnia", order.StatusInProgress, datePtr(now.AddDate(0, 0, 3))),
			makeOrder(2, "schody", order.StatusCompleted, datePtr(now.AddDate(0, 0, -2))),
		},
	}

	snap := BuildSnapshot(records, ConnectionState{})

	// all five buckets present even when empty
	if len(snap.OrdersByStatus) != len(order.Statuses) {
		t.Fatalf("expected %d buckets, got %d", len(order.Statuses), len(snap.OrdersByStatus))
	}

	for _, status := range order.Statuses {
		if snap.OrdersByStatus[status] == nil {
			t.Fatalf("bucket %s must be non-nil", status)
		}
	}

	if got := len(snap.OrdersByStatus[order.StatusInProgress]); got != 1 {
		t.Fatalf("IN_PROGRESS bucket: got %d", got)
	}

	if got := len(snap.OrdersByStatus[order.StatusPending]); got != 0 {
		t.Fatalf("PENDING bucket should be empty, got %d", got)
	}
}

func TestBuildSnapshot_DueDateSortNilsLastTitleTiebreak(t *testing.T) {
	now := time.Now()
	due := now.AddDate(0, 0, 5)

	records := Records{
		Orders: []order.Order{
			makeOrder(1, "zzz", order.StatusPending, nil),
			makeOrder(2, "biblioteka", order.StatusPending, datePtr(due)),
			makeOrder(3, "aneks", order.StatusPending, datePtr(due)),
			makeOrder(4, "lada", order.StatusPending, datePtr(now.AddDate(0, 0, 1))),
		},
	}

	snap := BuildSnapshot(records, ConnectionState{})
	bucket := snap.OrdersByStatus[order.StatusPending]

	want := []string{"lada", "aneks", "biblioteka", "zzz"}

	for i, title := range want {
		if bucket[i].Title != title {
			t.Fatalf("position %d: want %q, got %q", i, title, bucket[i].Title)
		}
	}
}

func TestBuildSnapshot_UpcomingExcludesClosedAndUndatedCapsAtSix(t *testing.T) {
	now := time.Now()

	orders := []order.Order{
		makeOrder(100, "done", order.StatusCompleted, datePtr(now.AddDate(0, 0, 1))),
		makeOrder(101, "cancelled", order.StatusCancelled, datePtr(now.AddDate(0, 0, 1))),
		makeOrder(102, "undated", order.StatusPending, nil),
	}

	for i := int64(0); i < 8; i++ {
		orders = append(orders, makeOrder(i+1, "open", order.StatusInProgress, datePtr(now.AddDate(0, 0, int(i)))))
	}

	snap := BuildSnapshot(Records{Orders: orders}, ConnectionState{})

	if len(snap.Upcoming) != upcomingLimit {
		t.Fatalf("expected %d upcoming, got %d", upcomingLimit, len(snap.Upcoming))
	}

	for _, o := range snap.Upcoming {
		if o.Status.Closed() {
			t.Fatalf("closed order %q leaked into upcoming", o.Title)
		}

		if o.DueDate == nil {
			t.Fatalf("undated order %q leaked into upcoming", o.Title)
		}
	}
}

func TestBuildSnapshot_Counts(t *testing.T) {
	now := time.Now()

	urgent := makeOrder(1, "pilne", order.StatusInProgress, datePtr(now))
	urgent.Priority = order.PriorityUrgent

	urgentClosed := makeOrder(2, "pilne-zamkniete", order.StatusCancelled, nil)
	urgentClosed.Priority = order.PriorityUrgent

	records := Records{
		Orders: []order.Order{
			urgent,
			urgentClosed,
			makeOrder(3, "otwarte", order.StatusPending, nil),
			makeOrder(4, "gotowe", order.StatusCompleted, nil),
		},
		Carpenters: []carpenter.Carpenter{{ID: 1}, {ID: 2}},
		Clients:    []client.Client{{ID: 1}},
	}

	snap := BuildSnapshot(records, ConnectionState{})

	if snap.Counts.Orders != 4 {
		t.Fatalf("orders count: got %d", snap.Counts.Orders)
	}

	if snap.Counts.ActiveOrders != 2 {
		t.Fatalf("active orders: got %d", snap.Counts.ActiveOrders)
	}

	// urgent counts only open orders
	if snap.Counts.UrgentOrders != 1 {
		t.Fatalf("urgent orders: got %d", snap.Counts.UrgentOrders)
	}

	if snap.Counts.Carpenters != 2 || snap.Counts.Clients != 1 {
		t.Fatalf("carpenters/clients: got %d/%d", snap.Counts.Carpenters, snap.Counts.Clients)
	}
}

func TestBuildSnapshot_TaskCounters(t *testing.T) {
	o := makeOrder(1, "kuchnia", order.StatusInProgress, nil)
	o.Tasks = []order.Task{
		{ID: 1, Status: order.TaskCompleted},
		{ID: 2, Status: order.TaskCompleted},
		{ID: 3, Status: order.TaskInProgress},
		{ID: 4, Status: order.TaskBlocked},
	}

	snap := BuildSnapshot(Records{Orders: []order.Order{o}}, ConnectionState{})

	item := snap.OrdersByStatus[order.StatusInProgress][0]

	if item.TasksTotal != 4 || item.TasksCompleted != 2 {
		t.Fatalf("task counters: got %d/%d", item.TasksCompleted, item.TasksTotal)
	}
}

func TestBuildCarpenters_SortAndWindows(t *testing.T) {
	now := time.Now()

	busy := carpenter.Carpenter{ID: 1, Name: "Marta"}
	finisher := carpenter.Carpenter{
		ID:   2,
		Name: "Jakub",
		Orders: []order.Stub{
			{Status: order.StatusCompleted, CreatedAt: now.AddDate(0, 0, -40), DeliveredAt: datePtr(now.AddDate(0, 0, -3))},
			{Status: order.StatusCompleted, CreatedAt: now.AddDate(0, 0, -60)}, // outside the window
		},
	}

	records := Records{
		Orders: []order.Order{
			func() order.Order {
				o := makeOrder(1, "a", order.StatusInProgress, nil)
				o.Carpenter = &order.Ref{ID: 1, Name: "Marta"}
				return o
			}(),
			func() order.Order {
				o := makeOrder(2, "b", order.StatusPending, nil)
				o.Carpenter = &order.Ref{ID: 1, Name: "Marta"}
				return o
			}(),
		},
		Carpenters: []carpenter.Carpenter{finisher, busy},
	}

	snap := BuildSnapshot(records, ConnectionState{})

	if snap.Carpenters[0].Name != "Marta" {
		t.Fatalf("busiest carpenter should sort first, got %q", snap.Carpenters[0].Name)
	}

	if snap.Carpenters[0].ActiveOrders != 2 {
		t.Fatalf("Marta active orders: got %d", snap.Carpenters[0].ActiveOrders)
	}

	jakub := snap.Carpenters[1]

	// delivery date counts when present; the undelivered completion falls
	// outside the 30-day window by creation date
	if jakub.CompletedThisMonth != 1 {
		t.Fatalf("Jakub completed this month: got %d", jakub.CompletedThisMonth)
	}
}

func TestBuildClients_OpenOrdersLastOrderAndCap(t *testing.T) {
	now := time.Now()

	clients := make([]client.Client, 0, 10)

	for i := int64(1); i <= 10; i++ {
		clients = append(clients, client.Client{ID: i, Name: "Klient"})
	}

	o1 := makeOrder(1, "a", order.StatusInProgress, nil)
	o1.Client = &order.Ref{ID: 10, Name: "Klient"}
	o1.CreatedAt = now.AddDate(0, 0, -1)

	o2 := makeOrder(2, "b", order.StatusCompleted, nil)
	o2.Client = &order.Ref{ID: 10, Name: "Klient"}
	o2.CreatedAt = now.AddDate(0, 0, -9)

	snap := BuildSnapshot(Records{Orders: []order.Order{o1, o2}, Clients: clients}, ConnectionState{})

	if len(snap.Clients) != clientsLimit {
		t.Fatalf("expected %d clients, got %d", clientsLimit, len(snap.Clients))
	}

	top := snap.Clients[0]

	if top.ID != 10 {
		t.Fatalf("client with open orders should sort first, got id %d", top.ID)
	}

	// closed order does not count as open but does set lastOrderAt
	if top.OpenOrders != 1 {
		t.Fatalf("open orders: got %d", top.OpenOrders)
	}

	if top.LastOrderAt == nil || !top.LastOrderAt.Equal(o1.CreatedAt) {
		t.Fatalf("lastOrderAt should be the newest createdAt")
	}
}
