package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"go.lepak.sg/metro-planner/model"
)

const (
	erDupEntry = 1062

	createUsers = `create table if not exists users (
	username varchar(15) not null primary key,
	password_hash varchar(100) not null,
	created_at datetime(3) not null
)`
	createTickets = `create table if not exists tickets (
	booking_id varchar(36) not null primary key,
	ticket_ids text not null,
	type varchar(10) not null,
	from_station varchar(64) not null,
	to_station varchar(64) not null,
	count int not null,
	stops int not null,
	fare int not null,
	validity_minutes int not null,
	booked_at datetime(3) not null,
	status varchar(10) not null,
	cancelled_at datetime(3) null,
	booked_by varchar(15) not null,
	index (booked_by, booked_at)
)`

	insertUser   = "insert into users (username, password_hash, created_at) values (?,?,?)"
	selectUser   = "select username, password_hash, created_at from users where username = ?"
	insertTicket = "insert into tickets (booking_id, ticket_ids, type, from_station, to_station, count, stops, fare, validity_minutes, booked_at, status, cancelled_at, booked_by) values (?,?,?,?,?,?,?,?,?,?,?,?,?)"
	updateTicket = "update tickets set status = ?, cancelled_at = ? where booking_id = ?"
	selectTicket = "select booking_id, ticket_ids, type, from_station, to_station, count, stops, fare, validity_minutes, booked_at, status, cancelled_at, booked_by from tickets"
)

type MySQL struct {
	db *sql.DB
}

var _ Store = (*MySQL)(nil)

// OpenMySQL connects to dsn and creates the tables if needed.
func OpenMySQL(ctx context.Context, dsn string) (*MySQL, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	conn, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(conn)

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(1 * time.Hour)

	s := &MySQL{db: db}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQL) migrate(ctx context.Context) error {
	for _, stmt := range []string{createUsers, createTickets} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *MySQL) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx, insertUser, u.Username, u.PasswordHash, u.CreatedAt.UTC())
	return mapErr(err)
}

func (s *MySQL) GetUser(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, selectUser, username).Scan(&u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func (s *MySQL) SaveTicket(ctx context.Context, t model.Ticket) error {
	_, err := s.db.ExecContext(ctx, insertTicket,
		t.BookingID, strings.Join(t.TicketIDs, ","), string(t.Type), t.From, t.To,
		t.Count, t.Stops, t.Fare, t.ValidityMinutes, t.BookedAt.UTC(), string(t.Status),
		nullTime(t.CancelledAt), t.BookedBy)
	return mapErr(err)
}

func (s *MySQL) UpdateTicket(ctx context.Context, t model.Ticket) error {
	res, err := s.db.ExecContext(ctx, updateTicket, string(t.Status), nullTime(t.CancelledAt), t.BookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQL) GetTicket(ctx context.Context, bookingID string) (model.Ticket, error) {
	t, err := scanTicket(s.db.QueryRowContext(ctx, selectTicket+" where booking_id = ?", bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ticket{}, ErrNotFound
	}
	return t, err
}

func (s *MySQL) ListTickets(ctx context.Context, opt ListOptions) ([]model.Ticket, error) {
	var where []string
	var args []interface{}
	if opt.BookedBy != "" {
		where = append(where, "booked_by = ?")
		args = append(args, opt.BookedBy)
	}
	if opt.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opt.Status))
	}

	query := selectTicket
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by booked_at, booking_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var out []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *MySQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MySQL) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row scanner) (model.Ticket, error) {
	var (
		t         model.Ticket
		ids       string
		typ       string
		status    string
		cancelled sql.NullTime
	)
	err := row.Scan(&t.BookingID, &ids, &typ, &t.From, &t.To, &t.Count, &t.Stops, &t.Fare,
		&t.ValidityMinutes, &t.BookedAt, &status, &cancelled, &t.BookedBy)
	if err != nil {
		return model.Ticket{}, err
	}

	if ids != "" {
		t.TicketIDs = strings.Split(ids, ",")
	}
	t.Type = model.TicketType(typ)
	t.Status = model.TicketStatus(status)
	if cancelled.Valid {
		at := cancelled.Time
		t.CancelledAt = &at
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func mapErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == erDupEntry {
		return ErrExists
	}
	return err
}
