package testutil

// WarehouseMigrations returns the DDL for the warehouse service tables.
// Constraint names here must stay in sync with pkg/database error mapping.
func WarehouseMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS areas (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			description VARCHAR(500),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS locations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			area_id UUID NOT NULL REFERENCES areas(id),
			bay INT NOT NULL,
			row_num INT NOT NULL,
			col_num INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT locations_coordinates UNIQUE (area_id, bay, row_num, col_num)
		)`,

		`CREATE TABLE IF NOT EXISTS batches (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			batch_number VARCHAR(100) NOT NULL,
			medicine_name VARCHAR(200) NOT NULL,
			expiry_date DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT batches_batch_number UNIQUE (batch_number)
		)`,

		`CREATE TABLE IF NOT EXISTS packages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			batch_id UUID NOT NULL REFERENCES batches(id),
			quantity INT NOT NULL,
			location_id UUID REFERENCES locations(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT quantity_non_negative CHECK (quantity >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS check_orders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			inventory_check_date DATE NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			warehouse_manager UUID NOT NULL,
			created_by UUID NOT NULL,
			notes VARCHAR(2000),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT check_order_status_valid CHECK (status IN ('pending', 'processing', 'completed', 'cancelled'))
		)`,

		// Backs the single-active-audit rule against concurrent transactions.
		`CREATE UNIQUE INDEX IF NOT EXISTS check_orders_single_processing
			ON check_orders (status) WHERE status = 'processing'`,

		`CREATE TABLE IF NOT EXISTS inspections (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			check_order_id UUID NOT NULL REFERENCES check_orders(id),
			location_id UUID NOT NULL REFERENCES locations(id),
			status VARCHAR(20) NOT NULL DEFAULT 'draft',
			check_by UUID,
			notes VARCHAR(2000),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT inspection_status_valid CHECK (status IN ('draft', 'checking', 'checked'))
		)`,

		`CREATE TABLE IF NOT EXISTS check_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			inspection_id UUID NOT NULL REFERENCES inspections(id),
			package_id UUID NOT NULL REFERENCES packages(id),
			expected_quantity INT NOT NULL,
			actual_quantity INT NOT NULL,
			item_type VARCHAR(20) NOT NULL DEFAULT 'valid',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT check_items_inspection_package UNIQUE (inspection_id, package_id),
			CONSTRAINT item_type_valid CHECK (item_type IN ('valid', 'under_expected', 'over_expected'))
		)`,

		`CREATE TABLE IF NOT EXISTS user_cache (
			user_id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			role_name VARCHAR(100)
		)`,
	}
}
