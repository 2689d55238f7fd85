package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bidscout-engine/internal/domain"
)

// sqlite caps host parameters; stay well below it.
const lookupChunk = 400

// KnownLinks returns which of links are stored for platform. It issues one
// query per chunk of links rather than one per link.
func (d *DB) KnownLinks(ctx context.Context, platform domain.Platform, links []string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	for start := 0; start < len(links); start += lookupChunk {
		end := min(start+lookupChunk, len(links))
		chunk := links[start:end]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, string(platform))
		for _, l := range chunk {
			args = append(args, l)
		}
		q := fmt.Sprintf(`SELECT link FROM jobs WHERE platform = ? AND link IN (%s);`,
			strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ","))

		rows, err := d.Pool.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, fmt.Errorf("query known links: %w", err)
		}
		for rows.Next() {
			var l string
			if err := rows.Scan(&l); err != nil {
				rows.Close()
				return nil, err
			}
			known[l] = struct{}{}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return known, nil
}

// InsertJobs appends records that are not stored yet, in one transaction, and
// returns how many rows were added. Existing rows are never touched.
func (d *DB) InsertJobs(ctx context.Context, jobs []domain.JobRecord) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO jobs(platform, link, title, description, price, skills, client, posted, scraped_at)
VALUES(?,?,?,?,?,?,?,?,?);`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	added := 0
	for _, j := range jobs {
		skills := j.Skills
		if skills == nil {
			skills = []string{}
		}
		skillsB, _ := json.Marshal(skills)
		res, err := stmt.ExecContext(ctx,
			string(j.Platform), j.Link, j.Title, j.Description, j.Price,
			string(skillsB), j.Client, j.Posted, now)
		if err != nil {
			return 0, fmt.Errorf("insert job %s: %w", j.Link, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}
