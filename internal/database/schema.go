package database

// SchemaVersion identifies the fixed on-device schema. There is no
// upgrade path: tables are created with IF NOT EXISTS against this one
// shape, and a reset discards the file entirely.
const SchemaVersion = 1

// tableDef pairs a table name with its DDL so creation failures can be
// reported against the offending table.
type tableDef struct {
	name string
	ddl  string
}

var tableDefs = []tableDef{
	{"categories", `
	CREATE TABLE IF NOT EXISTS categories (
	    id          TEXT PRIMARY KEY,
	    name        TEXT NOT NULL,
	    color       TEXT NOT NULL DEFAULT '',
	    icon        TEXT NOT NULL DEFAULT '',
	    parent_id   TEXT REFERENCES categories(id),
	    created_at  TIMESTAMP NOT NULL,
	    updated_at  TIMESTAMP NOT NULL
	);`},
	{"currencies", `
	CREATE TABLE IF NOT EXISTS currencies (
	    code    TEXT PRIMARY KEY,
	    symbol  TEXT NOT NULL,
	    name    TEXT NOT NULL
	);`},
	{"payment_methods", `
	CREATE TABLE IF NOT EXISTS payment_methods (
	    id                TEXT PRIMARY KEY,
	    type              TEXT NOT NULL,
	    name              TEXT NOT NULL,
	    alias             TEXT,
	    last_four_digits  TEXT,
	    card_network      TEXT,
	    bank_name         TEXT,
	    provider          TEXT,
	    is_default        INTEGER NOT NULL DEFAULT 0,
	    is_active         INTEGER NOT NULL DEFAULT 1,
	    color             TEXT NOT NULL DEFAULT '',
	    icon              TEXT NOT NULL DEFAULT '',
	    created_at        TIMESTAMP NOT NULL,
	    updated_at        TIMESTAMP NOT NULL
	);`},
	{"expenses", `
	CREATE TABLE IF NOT EXISTS expenses (
	    id                 TEXT PRIMARY KEY,
	    amount             TEXT NOT NULL,
	    description        TEXT,
	    vendor             TEXT NOT NULL,
	    category_id        TEXT NOT NULL REFERENCES categories(id),
	    date               TIMESTAMP NOT NULL,
	    currency_code      TEXT NOT NULL REFERENCES currencies(code),
	    payment_method_id  TEXT REFERENCES payment_methods(id),
	    location           TEXT,
	    notes              TEXT,
	    created_at         TIMESTAMP NOT NULL,
	    updated_at         TIMESTAMP NOT NULL
	);`},
	{"tags", `
	CREATE TABLE IF NOT EXISTS tags (
	    id           TEXT PRIMARY KEY,
	    name         TEXT NOT NULL UNIQUE COLLATE NOCASE,
	    color        TEXT,
	    description  TEXT,
	    created_at   TIMESTAMP NOT NULL
	);`},
	{"expense_tags", `
	CREATE TABLE IF NOT EXISTS expense_tags (
	    expense_id  TEXT NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
	    tag_id      TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	    PRIMARY KEY (expense_id, tag_id)
	);`},
	{"vendors", `
	CREATE TABLE IF NOT EXISTS vendors (
	    id           TEXT PRIMARY KEY,
	    name         TEXT NOT NULL UNIQUE COLLATE NOCASE,
	    usage_count  INTEGER NOT NULL DEFAULT 0,
	    last_used    TIMESTAMP NOT NULL,
	    created_at   TIMESTAMP NOT NULL
	);`},
	{"user_preferences", `
	CREATE TABLE IF NOT EXISTS user_preferences (
	    id                     INTEGER PRIMARY KEY CHECK (id = 1),
	    default_currency_code  TEXT NOT NULL,
	    theme                  TEXT NOT NULL,
	    language               TEXT NOT NULL,
	    date_format            TEXT NOT NULL,
	    first_day_of_week      INTEGER NOT NULL,
	    created_at             TIMESTAMP NOT NULL,
	    updated_at             TIMESTAMP NOT NULL
	);`},
}

// Performance indexes. Each is created independently and best-effort.
var indexDefs = []string{
	`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_payment_method ON expenses(payment_method_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_vendor ON expenses(vendor)`,
	`CREATE INDEX IF NOT EXISTS idx_expense_tags_tag ON expense_tags(tag_id)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_vendors_usage ON vendors(usage_count)`,
}

// Reference currencies seeded on every initialization (INSERT OR IGNORE).
var defaultCurrencies = []struct {
	code   string
	symbol string
	name   string
}{
	{"USD", "$", "US Dollar"},
	{"EUR", "€", "Euro"},
	{"GBP", "£", "British Pound"},
	{"JPY", "¥", "Japanese Yen"},
	{"CAD", "$", "Canadian Dollar"},
	{"AUD", "$", "Australian Dollar"},
	{"CHF", "Fr", "Swiss Franc"},
	{"INR", "₹", "Indian Rupee"},
	{"CNY", "¥", "Chinese Yuan"},
}

const (
	defaultCurrencyCode      = "USD"
	defaultPaymentMethodID   = "pm-cash-default"
	defaultPaymentMethodName = "Cash"
)
