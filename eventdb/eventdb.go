// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists the history of executed ledger operations in
// sqlite, powering the dashboard's activity feed. It is append-only and
// strictly off the accounting path: the pools never read from it.
package eventdb

import (
	"database/sql"
	"math/big"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/quai"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	pool TEXT NOT NULL,
	op TEXT NOT NULL,
	account BLOB NOT NULL,
	amount TEXT NOT NULL,
	gasUsed INTEGER NOT NULL,
	blockNumber INTEGER NOT NULL,
	blockTime INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS event_account ON event(account);
CREATE INDEX IF NOT EXISTS event_pool ON event(pool);`

// Event is one executed ledger operation.
type Event struct {
	Seq         uint64       `json:"seq"`
	Pool        string       `json:"pool"`
	Op          string       `json:"op"`
	Account     quai.Address `json:"account"`
	Amount      *big.Int     `json:"amount"`
	GasUsed     uint64       `json:"gasUsed"`
	BlockNumber uint64       `json:"blockNumber"`
	BlockTime   uint64       `json:"blockTime"`
}

// RangeType selects which column a range filter applies to.
type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

// OrderType is the sort direction of a query.
type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

// Range bounds a query by block number or block time, inclusive.
type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

// Options pages a query.
type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events.
type Filter struct {
	Pool    string        `json:"pool"`
	Op      string        `json:"op"`
	Account *quai.Address `json:"account"`
	Order   OrderType     `json:"order"`
	Range   *Range        `json:"range"`
	Options *Options      `json:"options"`
}

// EventDB is the sqlite-backed event store.
type EventDB struct {
	path string
	db   *sql.DB
}

// New opens (creating if necessary) the event db at path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open event db")
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create event table")
	}
	return &EventDB{path: path, db: db}, nil
}

// NewMem creates an in-memory event db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Path returns the db file path.
func (db *EventDB) Path() string {
	return db.path
}

// Close closes the underlying db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

// Insert appends events in one transaction.
func (db *EventDB) Insert(events ...*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, event := range events {
		amount := "0"
		if event.Amount != nil {
			amount = event.Amount.String()
		}
		if _, err := tx.Exec(
			"INSERT INTO event(pool, op, account, amount, gasUsed, blockNumber, blockTime) VALUES (?, ?, ?, ?, ?, ?, ?);",
			event.Pool,
			event.Op,
			event.Account.Bytes(),
			amount,
			event.GasUsed,
			event.BlockNumber,
			event.BlockTime,
		); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "failed to insert event")
		}
	}
	return tx.Commit()
}

// Query returns events matching the filter, oldest first unless DESC.
func (db *EventDB) Query(filter *Filter) ([]*Event, error) {
	stmt := "SELECT seq, pool, op, account, amount, gasUsed, blockNumber, blockTime FROM event WHERE 1"
	var args []any
	if filter != nil {
		if filter.Pool != "" {
			stmt += " AND pool = ?"
			args = append(args, filter.Pool)
		}
		if filter.Op != "" {
			stmt += " AND op = ?"
			args = append(args, filter.Op)
		}
		if filter.Account != nil {
			stmt += " AND account = ?"
			args = append(args, filter.Account.Bytes())
		}
		if filter.Range != nil {
			column := "blockNumber"
			if filter.Range.Unit == Time {
				column = "blockTime"
			}
			stmt += " AND " + column + " >= ?"
			args = append(args, filter.Range.From)
			if filter.Range.To >= filter.Range.From {
				stmt += " AND " + column + " <= ?"
				args = append(args, filter.Range.To)
			}
		}
		if filter.Order == DESC {
			stmt += " ORDER BY seq DESC"
		} else {
			stmt += " ORDER BY seq ASC"
		}
		if filter.Options != nil {
			stmt += " LIMIT ?, ?"
			args = append(args, filter.Options.Offset, filter.Options.Limit)
		}
	}
	return db.query(stmt, args...)
}

func (db *EventDB) query(stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			event   Event
			account []byte
			amount  string
		)
		if err := rows.Scan(
			&event.Seq,
			&event.Pool,
			&event.Op,
			&account,
			&amount,
			&event.GasUsed,
			&event.BlockNumber,
			&event.BlockTime,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan event")
		}
		event.Account = quai.BytesToAddress(account)
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, errors.Errorf("malformed event amount %q", amount)
		}
		event.Amount = value
		events = append(events, &event)
	}
	return events, rows.Err()
}
