package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"houseprice_service/internal/domain/model"
)

// Condition is one inequality bound pushed down to the price database,
// rendered as "field op $n" in the WHERE clause.
type Condition struct {
	Field string
	Op    string
	Value interface{}
}

func GreaterEqual(field string, value interface{}) Condition {
	return Condition{Field: field, Op: ">=", Value: value}
}

func LessEqual(field string, value interface{}) Condition {
	return Condition{Field: field, Op: "<=", Value: value}
}

func Equal(field string, value interface{}) Condition {
	return Condition{Field: field, Op: "=", Value: value}
}

// TransactionStore reads historical property transactions from Postgres.
// The store owns a connection pool; every query checks out a single
// connection and releases it before returning, on error paths included.
type TransactionStore struct {
	db *sqlx.DB
}

func NewTransactionStore(connStr string) (*TransactionStore, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, errors.Wrapf(model.ErrDataAccess, "connect price database: %s", err)
	}
	return &TransactionStore{db: db}, nil
}

func (s *TransactionStore) Close() error {
	return s.db.Close()
}

// SelectTransactions retrieves rows from the named table bounded by the
// given conditions and row limit. Query failures are surfaced immediately;
// there are no retries.
func (s *TransactionStore) SelectTransactions(ctx context.Context, table string, conds []Condition, limit int) ([]model.Sample, error) {
	query, args, err := buildSelect(table, conds, limit)
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, errors.Wrapf(model.ErrDataAccess, "acquire connection: %s", err)
	}
	defer conn.Close()

	var rows []model.Sample
	if err := conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrapf(model.ErrDataAccess, "select from %s: %s", table, err)
	}
	return rows, nil
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// buildSelect renders the transaction query with positional placeholders.
// Field and table names must be plain lowercase identifiers; comparators
// come from the fixed condition constructors.
func buildSelect(table string, conds []Condition, limit int) (string, []interface{}, error) {
	if !identPattern.MatchString(table) {
		return "", nil, errors.Errorf("invalid table name %q", table)
	}

	var b strings.Builder
	args := make([]interface{}, 0, len(conds)+1)
	fmt.Fprintf(&b, "SELECT latitude, longitude, date_of_transfer, property_type, price, new_build_flag, tenure_type FROM %s", table)
	for i, c := range conds {
		if !identPattern.MatchString(c.Field) {
			return "", nil, errors.Errorf("invalid condition field %q", c.Field)
		}
		switch c.Op {
		case ">=", "<=", "=":
		default:
			return "", nil, errors.Errorf("invalid condition operator %q", c.Op)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, c.Value)
		fmt.Fprintf(&b, "%s %s $%d", c.Field, c.Op, len(args))
	}
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args, nil
}
