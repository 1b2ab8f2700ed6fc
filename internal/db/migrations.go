package db

import (
	"fmt"

	"gorm.io/gorm"

	"traffic-service/internal/repository"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'violation_status') THEN
			CREATE TYPE violation_status AS ENUM ('pending', 'paid', 'disputed', 'cancelled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_type') THEN
			CREATE TYPE vehicle_type AS ENUM ('sedan', 'suv', 'truck', 'motorcycle', 'bus', 'other');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS officers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		service_number VARCHAR(64) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		rank VARCHAR(64),
		station VARCHAR(255),
		pin_hash VARCHAR(255) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		last_login_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.ConstraintServiceNumber + ` ON officers (service_number);`,
	`CREATE TABLE IF NOT EXISTS admins (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(64) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL CHECK (role IN ('supervisor', 'manager', 'admin')),
		password_hash VARCHAR(255) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.ConstraintAdminUsername + ` ON admins (username);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		license_plate VARCHAR(32) NOT NULL CHECK (license_plate = UPPER(BTRIM(license_plate))),
		owner_name VARCHAR(255) NOT NULL,
		owner_phone VARCHAR(32),
		owner_email VARCHAR(255),
		vehicle_type vehicle_type NOT NULL DEFAULT 'other',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.ConstraintLicensePlate + ` ON vehicles (license_plate);`,
	`CREATE TABLE IF NOT EXISTS violation_types (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		base_fine BIGINT NOT NULL CHECK (base_fine >= 0),
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_violation_types_name ON violation_types (name);`,
	`CREATE TABLE IF NOT EXISTS violations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		ticket_number VARCHAR(32) NOT NULL,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE RESTRICT,
		officer_id UUID NOT NULL REFERENCES officers(id) ON DELETE RESTRICT,
		violation_type_id UUID NOT NULL REFERENCES violation_types(id) ON DELETE RESTRICT,
		fine_amount BIGINT NOT NULL CHECK (fine_amount >= 0),
		issued_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		location TEXT NOT NULL,
		notes TEXT,
		status violation_status NOT NULL DEFAULT 'pending',
		paid_at TIMESTAMPTZ,
		payment_method VARCHAR(32),
		payment_reference VARCHAR(255),
		dispute_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.ConstraintTicketNumber + ` ON violations (ticket_number);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.ConstraintPaymentReference + `
		ON violations (payment_reference)
		WHERE payment_reference IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_violations_vehicle_issued_at ON violations (vehicle_id, issued_at);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_officer_id ON violations (officer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_status ON violations (status);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_issued_at ON violations (issued_at);`,
	`CREATE TABLE IF NOT EXISTS violation_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		violation_id UUID NOT NULL REFERENCES violations(id) ON DELETE CASCADE,
		old_status violation_status,
		new_status violation_status NOT NULL,
		source VARCHAR(16) NOT NULL DEFAULT 'dashboard',
		note TEXT,
		changed_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`ALTER TABLE violation_status_log ADD COLUMN IF NOT EXISTS source VARCHAR(16) NOT NULL DEFAULT 'dashboard';`,
	`CREATE INDEX IF NOT EXISTS idx_violation_status_log_violation_id ON violation_status_log (violation_id);`,
	`CREATE OR REPLACE FUNCTION set_row_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_violations_updated_at') THEN
			CREATE TRIGGER trg_violations_updated_at
				BEFORE UPDATE ON violations
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_vehicles_updated_at') THEN
			CREATE TRIGGER trg_vehicles_updated_at
				BEFORE UPDATE ON vehicles
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_officers_updated_at') THEN
			CREATE TRIGGER trg_officers_updated_at
				BEFORE UPDATE ON officers
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
	END
	$$;`,
	// Fines are immutable once issued.
	`CREATE OR REPLACE FUNCTION trg_violations_freeze_fine()
	RETURNS TRIGGER AS $$
	BEGIN
		IF NEW.fine_amount <> OLD.fine_amount THEN
			RAISE EXCEPTION 'fine_amount of violation % is immutable', OLD.id;
		END IF;
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_violations_freeze_fine') THEN
			CREATE TRIGGER trg_violations_freeze_fine
				BEFORE UPDATE OF fine_amount ON violations
				FOR EACH ROW
				EXECUTE PROCEDURE trg_violations_freeze_fine();
		END IF;
	END
	$$;`,
}

func Migrate(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
