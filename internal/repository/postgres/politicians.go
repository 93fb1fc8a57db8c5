package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diretoriaja/monitor/internal/domain"
	"github.com/diretoriaja/monitor/internal/sources"
)

const politicianPageSize = 500

const politicianColumns = `
	id, name, COALESCE(social_name,''), office, COALESCE(party,''),
	COALESCE(city,''), COALESCE(state,''), COALESCE(cpf,''),
	COALESCE(photo_url,''), COALESCE(bluesky_handle,''),
	featured, active, created_at, updated_at`

// GetActivePoliticians returns every active politician, paging through
// the table so a large roster never loads in one query.
func (s *Store) GetActivePoliticians(ctx context.Context) ([]domain.Politician, error) {
	return s.listPoliticians(ctx, "WHERE active = true")
}

// GetFeaturedPoliticians returns active politicians flagged for the
// portal home page.
func (s *Store) GetFeaturedPoliticians(ctx context.Context) ([]domain.Politician, error) {
	return s.listPoliticians(ctx, "WHERE active = true AND featured = true")
}

func (s *Store) listPoliticians(ctx context.Context, where string) ([]domain.Politician, error) {
	var out []domain.Politician
	offset := 0

	for {
		q := fmt.Sprintf(`SELECT %s FROM politicians %s ORDER BY id LIMIT $1 OFFSET $2`,
			politicianColumns, where)
		rows, err := s.db.QueryContext(ctx, q, politicianPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list politicians: %w", err)
		}

		count := 0
		for rows.Next() {
			var p domain.Politician
			if err := rows.Scan(
				&p.ID, &p.Name, &p.SocialName, &p.Office, &p.Party,
				&p.City, &p.State, &p.CPF, &p.PhotoURL, &p.BlueSkyHandle,
				&p.Featured, &p.Active, &p.CreatedAt, &p.UpdatedAt,
			); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan politician: %w", err)
			}
			out = append(out, p)
			count++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate politicians: %w", err)
		}
		rows.Close()

		if count < politicianPageSize {
			return out, nil
		}
		offset += politicianPageSize
	}
}

// GetPolitician fetches one politician by id. An unknown id returns
// (nil, nil) so callers can answer not-found without unwrapping errors.
func (s *Store) GetPolitician(ctx context.Context, id int64) (*domain.Politician, error) {
	p := &domain.Politician{}
	q := fmt.Sprintf(`SELECT %s FROM politicians WHERE id = $1`, politicianColumns)
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.SocialName, &p.Office, &p.Party,
		&p.City, &p.State, &p.CPF, &p.PhotoURL, &p.BlueSkyHandle,
		&p.Featured, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get politician %d: %w", id, err)
	}
	return p, nil
}

// GetCompetitors returns the politicians linked to the given one via
// the competitor join table.
func (s *Store) GetCompetitors(ctx context.Context, politicianID int64) ([]domain.Politician, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM politicians p
		JOIN politician_competitors pc ON pc.competitor_id = p.id
		WHERE pc.politician_id = $1 AND p.active = true
		ORDER BY p.id`, politicianColumns)

	rows, err := s.db.QueryContext(ctx, q, politicianID)
	if err != nil {
		return nil, fmt.Errorf("get competitors: %w", err)
	}
	defer rows.Close()

	var out []domain.Politician
	for rows.Next() {
		var p domain.Politician
		if err := rows.Scan(
			&p.ID, &p.Name, &p.SocialName, &p.Office, &p.Party,
			&p.City, &p.State, &p.CPF, &p.PhotoURL, &p.BlueSkyHandle,
			&p.Featured, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan competitor: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListSources returns all registered news sources.
func (s *Store) ListSources(ctx context.Context) ([]sources.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, COALESCE(name,''), COALESCE(category,''), trust_weight, active
		FROM news_sources ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []sources.Source
	for rows.Next() {
		var src sources.Source
		if err := rows.Scan(&src.Domain, &src.Name, &src.Category, &src.TrustWeight, &src.Active); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// UpdateSourceWeight persists a source trust weight, inserting the
// domain when it is not registered yet.
func (s *Store) UpdateSourceWeight(ctx context.Context, domain string, weight float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO news_sources (domain, trust_weight, active)
		VALUES ($1, $2, true)
		ON CONFLICT (domain) DO UPDATE SET trust_weight = EXCLUDED.trust_weight`,
		domain, weight)
	if err != nil {
		return fmt.Errorf("update source weight: %w", err)
	}
	return nil
}
