package dashboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/observability"
)

// RecordSource loads the raw records the aggregator works from. The postgres
// implementation wraps its failures in ErrSchemaMissing / ErrStoreUnavailable
// so the service can classify without knowing about drivers.
type RecordSource interface {
	FetchRecords(ctx context.Context) (Records, error)
}

type Service struct {
	source RecordSource
	log    *slog.Logger
	prom   *observability.Prom
}

func NewService(source RecordSource, log *slog.Logger, prom *observability.Prom) *Service {
	return &Service{source: source, log: log, prom: prom}
}

// Dashboard builds a complete snapshot for the viewer. When the store is
// unreachable or not provisioned the synthetic dataset is substituted and the
// connection state says so; the response shape never changes.
func (s *Service) Dashboard(ctx context.Context, viewer user.Authenticated) Data {
	records, connection := s.loadRecords(ctx)

	if s.prom != nil {
		s.prom.DashboardSource.WithLabelValues(string(connection.Status), string(connection.Source)).Inc()
	}

	return Data{
		Viewer:   viewer,
		Snapshot: BuildSnapshot(records, connection),
	}
}

func (s *Service) loadRecords(ctx context.Context) (Records, ConnectionState) {
	if s.source == nil {
		return SampleRecords(), ConnectionState{
			Status:  StatusError,
			Label:   "No database configured",
			Details: "Showing sample data. Set DATABASE_URL to connect a database.",
			Source:  SourceSample,
		}
	}

	records, err := s.source.FetchRecords(ctx)

	if err == nil {
		return records, ConnectionState{
			Status: StatusConnected,
			Label:  "Connected to database",
			Source: SourceDatabase,
		}
	}

	switch {
	case errors.Is(err, ErrSchemaMissing):
		s.log.WarnContext(ctx, "dashboard schema missing, serving sample data", "error", err)

		return SampleRecords(), ConnectionState{
			Status:    StatusSchemaMissing,
			Label:     "Database schema not provisioned",
			Details:   "Showing sample data. Run the migrations to populate the dashboard.",
			Source:    SourceSample,
			ErrorCode: "undefined_table",
		}
	case errors.Is(err, ErrStoreUnavailable):
		s.log.WarnContext(ctx, "dashboard store unavailable, serving sample data", "error", err)

		return SampleRecords(), ConnectionState{
			Status:    StatusError,
			Label:     "Database unreachable",
			Details:   "Showing sample data. Check the database connection settings.",
			Source:    SourceSample,
			ErrorCode: "connection",
		}
	default:
		s.log.ErrorContext(ctx, "dashboard query failed, serving sample data", "error", err)

		return SampleRecords(), ConnectionState{
			Status:    StatusError,
			Label:     "Database query failed",
			Details:   "Showing sample data. See server logs for details.",
			Source:    SourceSample,
			ErrorCode: "unknown",
		}
	}
}
