package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meblomat/meblomat/internal/dashboard"
	"github.com/meblomat/meblomat/internal/domain/carpenter"
	"github.com/meblomat/meblomat/internal/domain/client"
	"github.com/meblomat/meblomat/internal/domain/order"
	"github.com/meblomat/meblomat/internal/observability"
)

// recentOrdersLimit bounds the dashboard working set; the aggregation is
// in-process, not in SQL, so we cap what we pull.
const recentOrdersLimit = 50

// RecordsRepo loads the raw rows the dashboard aggregator works from. It is
// the one repo that wraps its errors into the dashboard failure classes, so
// callers can classify with errors.Is and never see driver types.
type RecordsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRecordsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RecordsRepo {
	return &RecordsRepo{pool: pool, prom: prom}
}

func (r *RecordsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func classifyRecordsErr(err error) error {
	switch {
	case IsUndefinedTable(err):
		return fmt.Errorf("%w: %w", dashboard.ErrSchemaMissing, err)
	case IsConnectionError(err):
		return fmt.Errorf("%w: %w", dashboard.ErrStoreUnavailable, err)
	default:
		return err
	}
}

// FetchRecords loads orders, carpenters and clients in three queries plus one
// task fan-in. All-or-nothing: the first failure aborts the whole load.
func (r *RecordsRepo) FetchRecords(ctx context.Context) (dashboard.Records, error) {
	orders, err := r.fetchOrders(ctx)

	if err != nil {
		return dashboard.Records{}, classifyRecordsErr(err)
	}

	carpenters, err := r.fetchCarpenters(ctx)

	if err != nil {
		return dashboard.Records{}, classifyRecordsErr(err)
	}

	clients, err := r.fetchClients(ctx)

	if err != nil {
		return dashboard.Records{}, classifyRecordsErr(err)
	}

	return dashboard.Records{
		Orders:     orders,
		Carpenters: carpenters,
		Clients:    clients,
	}, nil
}

func (r *RecordsRepo) fetchOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order

	op := "records.orders"

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT o.id, o.reference, o.title, o.description, o.status, o.priority,
			        o.budget_cents, o.start_date, o.due_date, o.delivered_at,
			        o.created_at, o.updated_at,
			        c.id, c.name, cl.id, cl.name, w.id, w.name
			 FROM orders o
			 LEFT JOIN carpenters c ON c.id = o.carpenter_id
			 LEFT JOIN clients cl ON cl.id = o.client_id
			 LEFT JOIN workshops w ON w.id = o.workshop_id
			 ORDER BY o.created_at DESC
			 LIMIT $1`,
			recentOrdersLimit,
		)

		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var o order.Order
			var carpID, clientID, workshopID *int64
			var carpName, clientName, workshopName *string

			err := rows.Scan(
				&o.ID,
				&o.Reference,
				&o.Title,
				&o.Description,
				&o.Status,
				&o.Priority,
				&o.BudgetCents,
				&o.StartDate,
				&o.DueDate,
				&o.DeliveredAt,
				&o.CreatedAt,
				&o.UpdatedAt,
				&carpID, &carpName,
				&clientID, &clientName,
				&workshopID, &workshopName,
			)

			if err != nil {
				return err
			}

			if carpID != nil {
				o.Carpenter = &order.Ref{ID: *carpID, Name: deref(carpName)}
			}

			if clientID != nil {
				o.Client = &order.Ref{ID: *clientID, Name: deref(clientName)}
			}

			if workshopID != nil {
				o.Workshop = &order.Ref{ID: *workshopID, Name: deref(workshopName)}
			}

			o.Tasks = []order.Task{}
			orders = append(orders, o)
		}

		if err := rows.Err(); err != nil {
			return err
		}

		return r.attachTasks(ctx, orders)
	})

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// attachTasks fans the tasks of all fetched orders in with a single ANY query
// instead of one query per order.
func (r *RecordsRepo) attachTasks(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*order.Order, len(orders))

	for i := range orders {
		ids = append(ids, orders[i].ID)
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := r.pool.Query(ctx,
		`SELECT order_id, id, title, status, due_date
		 FROM order_tasks
		 WHERE order_id = ANY($1)
		 ORDER BY due_date NULLS LAST, id`,
		ids,
	)

	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var t order.Task

		if err := rows.Scan(&orderID, &t.ID, &t.Title, &t.Status, &t.DueDate); err != nil {
			return err
		}

		if o, ok := byID[orderID]; ok {
			o.Tasks = append(o.Tasks, t)
		}
	}

	return rows.Err()
}

func (r *RecordsRepo) fetchCarpenters(ctx context.Context) ([]carpenter.Carpenter, error) {
	var carpenters []carpenter.Carpenter

	op := "records.carpenters"

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT c.id, c.name, c.email, c.phone, c.headline, c.skills,
			        w.id, w.name
			 FROM carpenters c
			 LEFT JOIN workshops w ON w.id = c.workshop_id
			 ORDER BY c.name`,
		)

		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c carpenter.Carpenter
			var phone, headline *string
			var skills []string
			var workshopID *int64
			var workshopName *string

			err := rows.Scan(&c.ID, &c.Name, &c.Email, &phone, &headline, &skills, &workshopID, &workshopName)

			if err != nil {
				return err
			}

			c.Phone = deref(phone)
			c.Headline = deref(headline)
			c.Skills = skills

			if c.Skills == nil {
				c.Skills = []string{}
			}

			if workshopID != nil {
				c.Workshop = &carpenter.WorkshopRef{ID: *workshopID, Name: deref(workshopName)}
			}

			stubs, err := r.fetchStubs(ctx, "carpenter_id", c.ID)

			if err != nil {
				return err
			}

			c.Orders = stubs
			carpenters = append(carpenters, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return carpenters, nil
}

func (r *RecordsRepo) fetchClients(ctx context.Context) ([]client.Client, error) {
	var clients []client.Client

	op := "records.clients"

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, company, email, phone, address
			 FROM clients
			 ORDER BY name`,
		)

		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c client.Client
			var company, phone, address *string

			err := rows.Scan(&c.ID, &c.Name, &company, &c.Email, &phone, &address)

			if err != nil {
				return err
			}

			c.Company = deref(company)
			c.Phone = deref(phone)
			c.Address = deref(address)

			stubs, err := r.fetchStubs(ctx, "client_id", c.ID)

			if err != nil {
				return err
			}

			c.Orders = stubs
			clients = append(clients, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return clients, nil
}

// fetchStubs loads the slim order projection joined onto one carpenter or
// client. column is always one of the two literals above, never user input.
func (r *RecordsRepo) fetchStubs(ctx context.Context, column string, ownerID int64) ([]order.Stub, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, created_at, delivered_at FROM orders WHERE `+column+` = $1`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stubs := []order.Stub{}

	for rows.Next() {
		var s order.Stub

		if err := rows.Scan(&s.Status, &s.CreatedAt, &s.DeliveredAt); err != nil {
			return nil, err
		}

		stubs = append(stubs, s)
	}

	return stubs, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
