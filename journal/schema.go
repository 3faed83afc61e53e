// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	transaction_id TEXT PRIMARY KEY,
	sender_id TEXT NOT NULL,
	receiver_id TEXT NOT NULL,
	amount_sent TEXT,
	currency_sent TEXT NOT NULL,
	amount_received TEXT,
	currency_received TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	processed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions(sender_id);
CREATE INDEX IF NOT EXISTS idx_transactions_receiver ON transactions(receiver_id);
CREATE INDEX IF NOT EXISTS idx_transactions_processed ON transactions(processed_at);

CREATE TABLE IF NOT EXISTS balances (
	time DATETIME NOT NULL,
	account_id TEXT NOT NULL,
	transaction_id TEXT NOT NULL,
	currency TEXT NOT NULL,
	balance TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_balances_account ON balances(account_id, time);
`
