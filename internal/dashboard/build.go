package dashboard

import (
	"sort"
	"time"

	"github.com/meblomat/meblomat/internal/domain/order"
)

const (
	upcomingLimit = 6
	clientsLimit  = 8
	completedDays = 30
)

// BuildSnapshot derives the full dashboard view model from one set of
// records. Pure function of (records, connection, now-ish); no I/O.
func BuildSnapshot(records Records, connection ConnectionState) Snapshot {
	ordersByStatus := make(map[order.Status][]Order, len(order.Statuses))

	for _, status := range order.Statuses {
		ordersByStatus[status] = []Order{}
	}

	upcoming := []Order{}

	for _, o := range records.Orders {
		item := toDashboardOrder(o)
		ordersByStatus[o.Status] = append(ordersByStatus[o.Status], item)

		if o.DueDate != nil && !o.Status.Closed() {
			upcoming = append(upcoming, item)
		}
	}

	for _, status := range order.Statuses {
		sortOrdersByDueDate(ordersByStatus[status])
	}

	sortOrdersByDueDate(upcoming)

	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}

	counts := Counts{
		Orders:     len(records.Orders),
		Carpenters: len(records.Carpenters),
		Clients:    len(records.Clients),
	}

	for _, o := range records.Orders {
		if o.Status.Closed() {
			continue
		}

		counts.ActiveOrders++

		if o.Priority == order.PriorityUrgent {
			counts.UrgentOrders++
		}
	}

	return Snapshot{
		Connection:     connection,
		Counts:         counts,
		OrdersByStatus: ordersByStatus,
		Upcoming:       upcoming,
		Carpenters:     buildCarpenters(records),
		Clients:        buildClients(records),
	}
}

func toDashboardOrder(o order.Order) Order {
	tasksCompleted := 0

	for _, t := range o.Tasks {
		if t.Status == order.TaskCompleted {
			tasksCompleted++
		}
	}

	item := Order{
		ID:             o.ID,
		Reference:      o.Reference,
		Title:          o.Title,
		Status:         o.Status,
		Priority:       o.Priority,
		BudgetCents:    o.BudgetCents,
		DueDate:        o.DueDate,
		TasksTotal:     len(o.Tasks),
		TasksCompleted: tasksCompleted,
	}

	if o.Carpenter != nil {
		item.CarpenterName = o.Carpenter.Name
	}

	if o.Client != nil {
		item.ClientName = o.Client.Name
	}

	if o.Workshop != nil {
		item.WorkshopName = o.Workshop.Name
	}

	return item
}

// sortOrdersByDueDate orders ascending by due date with undated orders last;
// ties break on title.
func sortOrdersByDueDate(items []Order) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return a.Title < b.Title
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case a.DueDate.Equal(*b.DueDate):
			return a.Title < b.Title
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})
}

func buildCarpenters(records Records) []Carpenter {
	out := make([]Carpenter, 0, len(records.Carpenters))

	threshold := time.Now().AddDate(0, 0, -completedDays)

	for _, c := range records.Carpenters {
		item := Carpenter{
			ID:       c.ID,
			Name:     c.Name,
			Email:    c.Email,
			Phone:    c.Phone,
			Headline: c.Headline,
			Skills:   c.Skills,
		}

		if c.Workshop != nil {
			item.WorkshopName = c.Workshop.Name
		}

		for _, o := range records.Orders {
			if o.Carpenter != nil && o.Carpenter.ID == c.ID && !o.Status.Closed() {
				item.ActiveOrders++
			}
		}

		for _, stub := range c.Orders {
			if stub.Status != order.StatusCompleted {
				continue
			}

			// effective completion date: delivery, else creation
			completed := stub.CreatedAt

			if stub.DeliveredAt != nil {
				completed = *stub.DeliveredAt
			}

			if !completed.Before(threshold) {
				item.CompletedThisMonth++
			}
		}

		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ActiveOrders != out[j].ActiveOrders {
			return out[i].ActiveOrders > out[j].ActiveOrders
		}

		return out[i].CompletedThisMonth > out[j].CompletedThisMonth
	})

	return out
}

func buildClients(records Records) []Client {
	out := make([]Client, 0, len(records.Clients))

	for _, c := range records.Clients {
		item := Client{
			ID:      c.ID,
			Name:    c.Name,
			Company: c.Company,
			Email:   c.Email,
			Phone:   c.Phone,
		}

		for _, o := range records.Orders {
			if o.Client == nil || o.Client.ID != c.ID {
				continue
			}

			if !o.Status.Closed() {
				item.OpenOrders++
			}

			if item.LastOrderAt == nil || o.CreatedAt.After(*item.LastOrderAt) {
				createdAt := o.CreatedAt
				item.LastOrderAt = &createdAt
			}
		}

		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OpenOrders != out[j].OpenOrders {
			return out[i].OpenOrders > out[j].OpenOrders
		}

		return lastOrderTime(out[i]).After(lastOrderTime(out[j]))
	})

	if len(out) > clientsLimit {
		out = out[:clientsLimit]
	}

	return out
}

func lastOrderTime(c Client) time.Time {
	if c.LastOrderAt == nil {
		return time.Time{}
	}

	return *c.LastOrderAt
}
