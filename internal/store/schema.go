package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS regions (
    name                 TEXT PRIMARY KEY,
    position             INTEGER NOT NULL,
    fetched_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS predictions (
    id                   TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL,
    source               TEXT NOT NULL,
    title                TEXT,
    property_type        TEXT,
    location             TEXT NOT NULL,
    city                 TEXT NOT NULL,
    bhk                  INTEGER NOT NULL,
    total_area           REAL NOT NULL,
    price_per_sqft       REAL NOT NULL,
    bathroom             INTEGER NOT NULL,
    balcony              INTEGER NOT NULL DEFAULT 0,
    price_lakhs          REAL NOT NULL,
    price_crores         REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
CREATE INDEX IF NOT EXISTS idx_predictions_city ON predictions(city);
`
