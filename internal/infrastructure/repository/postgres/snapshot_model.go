package postgres

import "time"

type snapshotModel struct {
	Label     string    `db:"label"`
	CreatedAt time.Time `db:"created_at"`
	Payload   []byte    `db:"payload"`
}
