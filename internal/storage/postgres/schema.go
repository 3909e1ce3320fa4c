package postgres

const schema = `
-- Babies table
CREATE TABLE IF NOT EXISTS babies (
    id TEXT PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    birth_date DATE NOT NULL,
    sex TEXT NOT NULL CHECK (sex IN ('male', 'female')),
    parent_name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_babies_created_at ON babies(created_at);

-- Measurements table
CREATE TABLE IF NOT EXISTS measurements (
    id TEXT PRIMARY KEY,
    baby_id TEXT NOT NULL REFERENCES babies(id) ON DELETE CASCADE,
    height_cm DOUBLE PRECISION NOT NULL,
    weight_kg DOUBLE PRECISION NOT NULL,
    age_months INTEGER NOT NULL CHECK (age_months >= 0),
    haz_score DOUBLE PRECISION NOT NULL,
    haz_category TEXT NOT NULL,
    haz_color TEXT NOT NULL,
    image_path TEXT NOT NULL DEFAULT '',
    landmarks_data JSONB,
    scale_cm_per_px DOUBLE PRECISION NOT NULL CHECK (scale_cm_per_px > 0),
    method TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    measurement_date TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_measurements_baby_date ON measurements(baby_id, measurement_date DESC);
`
