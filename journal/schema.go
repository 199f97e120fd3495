package journal

// Amount columns are TEXT on purpose: decimal strings survive a round trip
// exactly, REAL would not.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	source TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	fills INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS timeseries (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	ts INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	realized_total TEXT NOT NULL,
	unrealized_total TEXT NOT NULL,
	gross_total TEXT NOT NULL,
	realized_symbol TEXT NOT NULL,
	unrealized_symbol TEXT NOT NULL,
	gross_symbol TEXT NOT NULL,
	realized_total_symbol TEXT NOT NULL,
	gross_total_symbol TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	symbol TEXT NOT NULL,
	net_qty TEXT NOT NULL,
	long_qty TEXT NOT NULL,
	short_qty TEXT NOT NULL,
	last_price TEXT,
	avg_long_price TEXT,
	avg_short_price TEXT,
	realized_total TEXT NOT NULL,
	PRIMARY KEY (run_id, symbol)
);

CREATE INDEX IF NOT EXISTS idx_timeseries_run_ts ON timeseries(run_id, ts);
`
