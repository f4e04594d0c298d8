package repository

// ProductsSchema tables du keyspace produits
var ProductsSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id uuid PRIMARY KEY,
		slug text,
		name text,
		short_description text,
		long_description text,
		size text,
		base_price decimal,
		photos list<text>,
		featured boolean,
		status text,
		display_order int,
		stock int,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS products_by_slug (
		slug text PRIMARY KEY,
		product_id uuid
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		product_id uuid,
		id uuid,
		name text,
		description text,
		price decimal,
		is_default boolean,
		display_order int,
		is_active boolean,
		created_at timestamp,
		updated_at timestamp,
		PRIMARY KEY (product_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS site_config (
		key text PRIMARY KEY,
		value text,
		type text
	)`,
}

// OrdersSchema tables du keyspace commandes
var OrdersSchema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id uuid PRIMARY KEY,
		customer_name text,
		customer_phone text,
		email text,
		items text,
		total decimal,
		delivery_type text,
		delivery_address text,
		payment_method text,
		delivery_date text,
		payment_status text,
		paid boolean,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS checkout_drafts (
		session_id text PRIMARY KEY,
		form_data text,
		expires_at timestamp,
		updated_at timestamp
	)`,
}
