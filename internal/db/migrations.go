package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('pending_review', 'approved', 'rejected', 'completed');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		role VARCHAR(16) NOT NULL CHECK (role IN ('admin', 'agent')),
		company_id UUID,
		target_sales NUMERIC(14,2) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_users_company ON users (company_id);`,
	`CREATE TABLE IF NOT EXISTS services (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		monthly_cost NUMERIC(14,2) NOT NULL,
		department VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS packages (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		type VARCHAR(128) NOT NULL,
		duration_months INTEGER NOT NULL CHECK (duration_months > 0),
		total_price NUMERIC(14,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS package_services (
		package_id UUID NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
		service_id UUID NOT NULL REFERENCES services(id),
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (package_id, service_id)
	);`,
	`CREATE TABLE IF NOT EXISTS contract_clauses (
		id UUID PRIMARY KEY,
		service_id UUID NOT NULL REFERENCES services(id),
		clause_text TEXT NOT NULL,
		duration_months INTEGER NOT NULL CHECK (duration_months > 0),
		sort_order INTEGER NOT NULL CHECK (sort_order >= 1),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_clauses_lookup ON contract_clauses (duration_months, service_id, sort_order);`,
	`CREATE TABLE IF NOT EXISTS addons (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		price NUMERIC(14,2) NOT NULL CHECK (price >= 0),
		description TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id UUID PRIMARY KEY,
		code VARCHAR(64) NOT NULL UNIQUE,
		discount_percent NUMERIC(5,2) NOT NULL CHECK (discount_percent >= 0 AND discount_percent <= 100),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		expires_at TIMESTAMPTZ,
		usage_limit INTEGER CHECK (usage_limit IS NULL OR usage_limit >= 0),
		used_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_coupons_usage CHECK (used_count >= 0 AND (usage_limit IS NULL OR used_count <= usage_limit))
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY,
		client_name VARCHAR(255) NOT NULL,
		client_email VARCHAR(255),
		client_phone VARCHAR(64),
		total_amount NUMERIC(14,2) NOT NULL,
		contract_clauses JSONB NOT NULL DEFAULT '[]'::jsonb,
		status contract_status NOT NULL DEFAULT 'pending_review',
		sales_agent_id UUID NOT NULL REFERENCES users(id),
		package_id UUID NOT NULL REFERENCES packages(id),
		coupon_code VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_sales_agent_id ON contracts (sales_agent_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE TABLE IF NOT EXISTS contract_addons (
		contract_id UUID NOT NULL REFERENCES contracts(id),
		addon_id UUID NOT NULL REFERENCES addons(id),
		is_approved BOOLEAN NOT NULL DEFAULT FALSE,
		approved_by UUID REFERENCES users(id),
		approved_at TIMESTAMPTZ,
		PRIMARY KEY (contract_id, addon_id)
	);`,
	`CREATE TABLE IF NOT EXISTS contract_audit_logs (
		id BIGSERIAL PRIMARY KEY,
		contract_id UUID NOT NULL REFERENCES contracts(id),
		user_id UUID NOT NULL REFERENCES users(id),
		action VARCHAR(64) NOT NULL,
		details TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_audit_logs_contract ON contract_audit_logs (contract_id, created_at DESC, id DESC);`,
	`CREATE OR REPLACE FUNCTION contract_audit_logs_append_only() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION 'contract_audit_logs is append-only';
	END
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_contract_audit_logs_append_only') THEN
			CREATE TRIGGER trg_contract_audit_logs_append_only
				BEFORE UPDATE OR DELETE ON contract_audit_logs
				FOR EACH ROW EXECUTE FUNCTION contract_audit_logs_append_only();
		END IF;
	END
	$$;`,
}

// Migrate applies every statement in order. Statements are idempotent.
func Migrate(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
