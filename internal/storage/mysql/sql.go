package mysql

const insertRunSQL = `
INSERT INTO runs
  (id, created_at, source, total, duplicates, eligible, excluded, top_n)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

// Rows are appended as "(?, ?, ...)" groups after the prefix.
const insertRankedPrefix = "INSERT INTO ranked_hotels\n  (run_id, rank_pos, hotel_id, name, star_rating, location, numeric_price, review_score, value_ratio, doc)\nVALUES "

const rankedPlaceholders = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const latestRunSQL = `
SELECT id, created_at, source, total, duplicates, eligible, excluded, top_n
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT 1
`

const listRankedSQL = `
SELECT doc
FROM ranked_hotels
WHERE run_id = ?
ORDER BY rank_pos
LIMIT ?
`
