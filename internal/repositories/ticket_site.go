package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/models/repositories"

	"github.com/lib/pq"
)

// CreateTicketSource всегда добавляет новую строку, даже если такая уже есть.
func (r *Repository) CreateTicketSource(ctx context.Context, source domain.TicketSource) (domain.TicketSource, error) {
	op := "repository.CreateTicketSource()"

	err := r.DB.QueryRowxContext(ctx,
		`INSERT INTO ticket_sites (name, price, url, event_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		source.Name, source.Price, source.URL, source.EventID,
	).Scan(&source.ID)
	if err != nil {
		return domain.TicketSource{}, fmt.Errorf("%s: %w", op, err)
	}

	return source, nil
}

// UpsertTicketSource ищет вариант покупки по (event_id, name): найденный обновляет, иначе создаёт.
// Второй результат равен true, если строка создана.
func (r *Repository) UpsertTicketSource(ctx context.Context, source domain.TicketSource) (domain.TicketSource, bool, error) {
	op := "repository.UpsertTicketSource()"

	var existing repositories.TicketSite
	err := r.DB.GetContext(ctx, &existing,
		`SELECT id, event_id, name, price, url FROM ticket_sites
		 WHERE event_id = $1 AND name = $2 ORDER BY id LIMIT 1`,
		source.EventID, source.Name,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.TicketSource{}, false, fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		created, err := r.CreateTicketSource(ctx, source)
		if err != nil {
			return domain.TicketSource{}, false, fmt.Errorf("%s: %w", op, err)
		}
		return created, true, nil
	}

	_, err = r.DB.ExecContext(ctx,
		`UPDATE ticket_sites SET price = $1, url = $2 WHERE id = $3`,
		source.Price, source.URL, existing.ID,
	)
	if err != nil {
		return domain.TicketSource{}, false, fmt.Errorf("%s: %w", op, err)
	}

	source.ID = existing.ID
	return source, false, nil
}

// FindTicketSources возвращает варианты покупки для набора событий, сгруппированные по event_id.
func (r *Repository) FindTicketSources(ctx context.Context, eventIDs []int64) (map[int64][]domain.TicketSource, error) {
	op := "repository.FindTicketSources()"

	result := make(map[int64][]domain.TicketSource, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}

	var rows []repositories.TicketSite
	err := r.DB.SelectContext(ctx, &rows,
		`SELECT id, event_id, name, price, url FROM ticket_sites
		 WHERE event_id = ANY($1) ORDER BY id ASC`,
		pq.Array(eventIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, row := range rows {
		result[row.EventID] = append(result[row.EventID], domain.TicketSource{
			ID:      row.ID,
			EventID: row.EventID,
			Name:    row.Name,
			Price:   row.Price,
			URL:     row.URL,
		})
	}

	return result, nil
}
