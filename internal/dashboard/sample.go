package dashboard

import (
	"time"

	"github.com/meblomat/meblomat/internal/domain/carpenter"
	"github.com/meblomat/meblomat/internal/domain/client"
	"github.com/meblomat/meblomat/internal/domain/order"
	"github.com/meblomat/meblomat/internal/domain/workshop"
)

// The synthetic dataset stands in for the live store when it is unreachable
// or not yet provisioned. Contents are deterministic; day offsets are
// resolved against now at call time so due dates stay plausible.

type sampleTask struct {
	id        int64
	title     string
	status    order.TaskStatus
	dueInDays int
}

type sampleOrder struct {
	id              int64
	reference       string
	title           string
	description     string
	status          order.Status
	priority        order.Priority
	budgetCents     int64
	startInDays     int
	dueInDays       int
	deliveredInDays *int
	carpenterID     int64
	clientID        int64
	workshopID      int64
	tasks           []sampleTask
}

var sampleWorkshops = []workshop.Workshop{
	{
		ID:          1,
		Name:        "Atelier Praga",
		Description: "Zespół specjalizujący się w meblach do mieszkań loftowych.",
		Location:    "Warszawa, Praga-Północ",
	},
	{
		ID:          2,
		Name:        "Warsztat Mokotów",
		Description: "Drewniane zabudowy do biur i lokali usługowych.",
		Location:    "Warszawa, Mokotów",
	},
}

var sampleCarpenters = []carpenter.Carpenter{
	{
		ID:       1,
		Name:     "Marta Kowalska",
		Email:    "marta@meblomat.pl",
		Phone:    "+48 600 200 100",
		Headline: "Projektantka zabudów kuchennych",
		Skills:   []string{"Zabudowy kuchenne", "Fronty lakierowane", "Projektowanie 3D"},
		Workshop: &carpenter.WorkshopRef{ID: 1, Name: "Atelier Praga"},
	},
	{
		ID:       2,
		Name:     "Jakub Lis",
		Email:    "jakub@meblomat.pl",
		Phone:    "+48 600 200 110",
		Headline: "Specjalista od konstrukcji drewnianych",
		Skills:   []string{"Schody", "Stoły dębowe", "Lite drewno"},
		Workshop: &carpenter.WorkshopRef{ID: 1, Name: "Atelier Praga"},
	},
	{
		ID:       3,
		Name:     "Natalia Wrona",
		Email:    "natalia@meblomat.pl",
		Phone:    "+48 600 200 120",
		Headline: "Koordynatorka zamówień komercyjnych",
		Skills:   []string{"Zabudowy biurowe", "Panele ścienne", "Okleiny"},
		Workshop: &carpenter.WorkshopRef{ID: 2, Name: "Warsztat Mokotów"},
	},
}

var sampleClients = []client.Client{
	{
		ID:      1,
		Name:    "Anna Nowak",
		Company: "Studio Wnętrz ARANŻ",
		Email:   "anna.nowak@aranz.pl",
		Phone:   "+48 500 600 700",
		Address: "Warszawa, ul. Targowa 15",
	},
	{
		ID:      2,
		Name:    "Hubert Maj",
		Company: "Kawiarnia Zielony Zakątek",
		Email:   "hubert@zielonyzakatek.pl",
		Phone:   "+48 511 633 211",
		Address: "Warszawa, ul. Puławska 67",
	},
	{
		ID:      3,
		Name:    "Joanna Piotrowska",
		Company: "Mieszkanie prywatne",
		Email:   "joanna.piotrowska@example.com",
		Phone:   "+48 609 900 123",
		Address: "Warszawa, ul. Jana Pawła II 23/5",
	},
}

var sampleOrders = []sampleOrder{
	{
		id:          1,
		reference:   "ORD-2024-001",
		title:       "Zabudowa kuchni na wymiar",
		description: "Projekt i wykonanie zabudowy kuchennej w mieszkaniu w kamienicy – dąb bielony, fronty frezowane, systemy Blum.",
		status:      order.StatusInProgress,
		priority:    order.PriorityUrgent,
		budgetCents: 342500,
		startInDays: -10,
		dueInDays:   12,
		carpenterID: 1,
		clientID:    1,
		workshopID:  1,
		tasks: []sampleTask{
			{id: 1, title: "Pomiary na miejscu", status: order.TaskCompleted, dueInDays: -9},
			{id: 2, title: "Projekt frontów i korpusów", status: order.TaskInProgress, dueInDays: 2},
			{id: 3, title: "Zamówienie okuć", status: order.TaskPending, dueInDays: 3},
		},
	},
	{
		id:          2,
		reference:   "ORD-2024-002",
		title:       "Lady i zabudowy do kawiarni",
		description: "Kompletna zabudowa baru, witryny na wypieki i siedziska dla kawiarni w centrum miasta. Lite drewno i stal.",
		status:      order.StatusPending,
		priority:    order.PriorityHigh,
		budgetCents: 528900,
		startInDays: -3,
		dueInDays:   28,
		carpenterID: 3,
		clientID:    2,
		workshopID:  2,
		tasks: []sampleTask{
			{id: 4, title: "Opracowanie projektu wykonawczego", status: order.TaskPending, dueInDays: 5},
			{id: 5, title: "Wycena materiałów", status: order.TaskPending, dueInDays: 7},
		},
	},
	{
		id:          3,
		reference:   "ORD-2024-003",
		title:       "Schody dębowe z balustradą",
		description: "Wykonanie schodów na konstrukcji stalowej, stopnie z dębu olejowanego i balustrada z hartowanego szkła.",
		status:      order.StatusReadyForDelivery,
		priority:    order.PriorityMedium,
		budgetCents: 187400,
		startInDays: -25,
		dueInDays:   3,
		carpenterID: 2,
		clientID:    3,
		workshopID:  1,
		tasks: []sampleTask{
			{id: 6, title: "Spawanie konstrukcji", status: order.TaskCompleted, dueInDays: -15},
			{id: 7, title: "Montaż stopni", status: order.TaskCompleted, dueInDays: -5},
			{id: 8, title: "Szlifowanie i olejowanie", status: order.TaskInProgress, dueInDays: 1},
		},
	},
	{
		id:              4,
		reference:       "ORD-2024-004",
		title:           "Biblioteka z podświetleniem LED",
		description:     "Zabudowa ściany w salonie z półkami na wymiar i zintegrowanym oświetleniem LED.",
		status:          order.StatusCompleted,
		priority:        order.PriorityMedium,
		budgetCents:     146000,
		startInDays:     -60,
		dueInDays:       -5,
		deliveredInDays: intPtr(-2),
		carpenterID:     1,
		clientID:        3,
		workshopID:      1,
		tasks: []sampleTask{
			{id: 9, title: "Produkcja korpusów", status: order.TaskCompleted, dueInDays: -20},
			{id: 10, title: "Montaż oświetlenia", status: order.TaskCompleted, dueInDays: -6},
		},
	},
	{
		id:          5,
		reference:   "ORD-2024-005",
		title:       "Renowacja stołu konferencyjnego",
		description: "Czyszczenie, uzupełnienie ubytków i ponowne olejowanie stołu konferencyjnego z litego dębu.",
		status:      order.StatusCancelled,
		priority:    order.PriorityLow,
		budgetCents: 54000,
		startInDays: -8,
		dueInDays:   -1,
		carpenterID: 2,
		clientID:    2,
		workshopID:  2,
		tasks: []sampleTask{
			{id: 11, title: "Diagnoza stanu", status: order.TaskCompleted, dueInDays: -6},
			{id: 12, title: "Przygotowanie kosztorysu", status: order.TaskBlocked, dueInDays: -2},
		},
	},
}

// SampleRecords materializes the synthetic dataset with dates anchored to now.
func SampleRecords() Records {
	now := time.Now()

	orders := make([]order.Order, 0, len(sampleOrders))

	for _, so := range sampleOrders {
		budget := so.budgetCents
		start := addDays(now, so.startInDays)
		due := addDays(now, so.dueInDays)

		o := order.Order{
			ID:          so.id,
			Reference:   so.reference,
			Title:       so.title,
			Description: so.description,
			Status:      so.status,
			Priority:    so.priority,
			BudgetCents: &budget,
			StartDate:   &start,
			DueDate:     &due,
			CreatedAt:   start,
			UpdatedAt:   due,
			Carpenter:   &order.Ref{ID: so.carpenterID, Name: sampleCarpenterName(so.carpenterID)},
			Client:      &order.Ref{ID: so.clientID, Name: sampleClientName(so.clientID)},
			Workshop:    &order.Ref{ID: so.workshopID, Name: sampleWorkshopName(so.workshopID)},
			Tasks:       make([]order.Task, 0, len(so.tasks)),
		}

		if so.deliveredInDays != nil {
			delivered := addDays(now, *so.deliveredInDays)
			o.DeliveredAt = &delivered
		}

		for _, st := range so.tasks {
			taskDue := addDays(now, st.dueInDays)
			o.Tasks = append(o.Tasks, order.Task{
				ID:      st.id,
				Title:   st.title,
				Status:  st.status,
				DueDate: &taskDue,
			})
		}

		orders = append(orders, o)
	}

	carpenters := make([]carpenter.Carpenter, len(sampleCarpenters))
	copy(carpenters, sampleCarpenters)

	for i := range carpenters {
		carpenters[i].Orders = orderStubsFor(orders, func(o order.Order) bool {
			return o.Carpenter != nil && o.Carpenter.ID == carpenters[i].ID
		})
	}

	clients := make([]client.Client, len(sampleClients))
	copy(clients, sampleClients)

	for i := range clients {
		clients[i].Orders = orderStubsFor(orders, func(o order.Order) bool {
			return o.Client != nil && o.Client.ID == clients[i].ID
		})
	}

	return Records{
		Orders:     orders,
		Carpenters: carpenters,
		Clients:    clients,
	}
}

func orderStubsFor(orders []order.Order, match func(order.Order) bool) []order.Stub {
	stubs := []order.Stub{}

	for _, o := range orders {
		if match(o) {
			stubs = append(stubs, order.Stub{
				Status:      o.Status,
				CreatedAt:   o.CreatedAt,
				DeliveredAt: o.DeliveredAt,
			})
		}
	}

	return stubs
}

func sampleCarpenterName(id int64) string {
	for _, c := range sampleCarpenters {
		if c.ID == id {
			return c.Name
		}
	}

	return "Nieznany stolarz"
}

func sampleClientName(id int64) string {
	for _, c := range sampleClients {
		if c.ID == id {
			return c.Name
		}
	}

	return "Nieznany klient"
}

func sampleWorkshopName(id int64) string {
	for _, w := range sampleWorkshops {
		if w.ID == id {
			return w.Name
		}
	}

	return "Warsztat"
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

func intPtr(v int) *int {
	return &v
}
