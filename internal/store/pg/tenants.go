package pg

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	"github.com/dropDatabas3/gatejohn/internal/store"
)

// GetBySlug resuelve slug → tenant con su configuración (LEFT JOIN: un
// tenant sin fila de config sigue existiendo, solo sin SSO).
func (s *Store) GetBySlug(ctx context.Context, slug string) (*controlplane.Tenant, error) {
	const query = `
		SELECT t.id, t.slug, t.name, t.created_at, t.updated_at,
		       COALESCE(c.logo_url, ''), COALESCE(c.brand_color, ''),
		       COALESCE(c.primary_domain, ''), COALESCE(c.integration_sso_secret_enc, '')
		FROM tenant t
		LEFT JOIN tenant_config c ON c.tenant_id = t.id
		WHERE t.slug = $1
	`
	var t controlplane.Tenant
	err := s.pool.QueryRow(ctx, query, strings.TrimSpace(slug)).Scan(
		&t.ID, &t.Slug, &t.Name, &t.CreatedAt, &t.UpdatedAt,
		&t.Settings.LogoURL, &t.Settings.BrandColor,
		&t.Settings.PrimaryDomain, &t.Settings.SSOSecretEnc,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) Create(ctx context.Context, tenant *controlplane.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	now := time.Now()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	tenant.UpdatedAt = now

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insTenant = `
		INSERT INTO tenant (id, slug, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insTenant, tenant.ID, tenant.Slug, tenant.Name, tenant.CreatedAt, tenant.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return store.ErrConflict
		}
		return err
	}

	const insConfig = `
		INSERT INTO tenant_config (tenant_id, logo_url, brand_color, primary_domain, integration_sso_secret_enc)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insConfig, tenant.ID,
		tenant.Settings.LogoURL, tenant.Settings.BrandColor,
		tenant.Settings.PrimaryDomain, tenant.Settings.SSOSecretEnc); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) UpdateSSOSecret(ctx context.Context, slug string, secretEnc string) error {
	const query = `
		UPDATE tenant_config c
		SET integration_sso_secret_enc = $2, updated_at = now()
		FROM tenant t
		WHERE t.id = c.tenant_id AND t.slug = $1
	`
	tag, err := s.pool.Exec(ctx, query, slug, secretEnc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Sin fila de config aún: crearla si el tenant existe.
		const upsert = `
			INSERT INTO tenant_config (tenant_id, integration_sso_secret_enc)
			SELECT id, $2 FROM tenant WHERE slug = $1
			ON CONFLICT (tenant_id) DO UPDATE
			SET integration_sso_secret_enc = EXCLUDED.integration_sso_secret_enc,
			    updated_at = now()
		`
		tag, err = s.pool.Exec(ctx, upsert, slug, secretEnc)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.ErrTenantNotFound
		}
	}
	return nil
}
