package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS plans (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    income               REAL NOT NULL,
    members              INTEGER NOT NULL,
    lifestyle            TEXT NOT NULL,
    city                 TEXT,
    formula              TEXT NOT NULL,
    rent                 INTEGER NOT NULL,
    grocery              INTEGER NOT NULL,
    utility              INTEGER NOT NULL,
    transport            INTEGER NOT NULL,
    shopping             INTEGER NOT NULL,
    dining               INTEGER NOT NULL,
    entertainment        INTEGER NOT NULL,
    reasoning            TEXT
);

CREATE TABLE IF NOT EXISTS scores (
    id                   TEXT PRIMARY KEY,
    score                INTEGER NOT NULL,
    level                INTEGER NOT NULL,
    victory              INTEGER NOT NULL DEFAULT 0,
    played_at            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at);
CREATE INDEX IF NOT EXISTS idx_scores_rank ON scores(score DESC, played_at);
`
