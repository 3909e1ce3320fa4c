package sqlite

const schema = `
-- Babies table
CREATE TABLE IF NOT EXISTS babies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL CHECK(length(name) <= 200),
    birth_date TEXT NOT NULL,
    sex TEXT NOT NULL CHECK(sex IN ('male', 'female')),
    parent_name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_babies_created_at ON babies(created_at);

-- Measurements table
CREATE TABLE IF NOT EXISTS measurements (
    id TEXT PRIMARY KEY,
    baby_id TEXT NOT NULL,
    height_cm REAL NOT NULL,
    weight_kg REAL NOT NULL,
    age_months INTEGER NOT NULL CHECK(age_months >= 0),
    haz_score REAL NOT NULL,
    haz_category TEXT NOT NULL,
    haz_color TEXT NOT NULL,
    image_path TEXT NOT NULL DEFAULT '',
    landmarks_data TEXT,
    scale_cm_per_px REAL NOT NULL CHECK(scale_cm_per_px > 0),
    method TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    measurement_date TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (baby_id) REFERENCES babies(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_measurements_baby_date ON measurements(baby_id, measurement_date);
CREATE INDEX IF NOT EXISTS idx_measurements_date ON measurements(measurement_date);
`
