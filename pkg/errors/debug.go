package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump is the log-side view of an error: the typed code, every wrapped
// layer, and whatever the database driver said.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
	Details    any    `json:"details,omitempty"`

	Chain []string `json:"chain,omitempty"`

	Driver       string `json:"driver,omitempty"`
	DBCode       string `json:"db_code,omitempty"`
	DBConstraint string `json:"db_constraint,omitempty"`
	DBTable      string `json:"db_table,omitempty"`
	DBColumn     string `json:"db_column,omitempty"`
	DBDetail     string `json:"db_detail,omitempty"`
	DBMessage    string `json:"db_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
		d.Details = te.Details()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	if !d.fillPgx(err) && !d.fillPq(err) {
		d.fillSQLite(err)
	}
	return d
}

// Fields flattens the dump into log fields, leaving out empty values.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if d.Code != "" {
		fields["error_code"] = d.Code
		fields["error_retryable"] = d.Retryable
	}
	if d.Details != nil {
		fields["error_details"] = d.Details
	}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	if d.Driver == "" {
		return fields
	}
	fields["db_driver"] = d.Driver
	for key, value := range map[string]string{
		"db_code":       d.DBCode,
		"db_constraint": d.DBConstraint,
		"db_table":      d.DBTable,
		"db_column":     d.DBColumn,
		"db_detail":     d.DBDetail,
		"db_message":    d.DBMessage,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

func (d *ErrorDump) fillPgx(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	d.Driver = "pgx"
	d.DBCode = pgErr.Code
	d.DBConstraint = pgErr.ConstraintName
	d.DBTable = pgErr.TableName
	d.DBColumn = pgErr.ColumnName
	d.DBDetail = pgErr.Detail
	d.DBMessage = pgErr.Message
	return true
}

func (d *ErrorDump) fillPq(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	d.Driver = "pq"
	d.DBCode = string(pqErr.Code)
	d.DBConstraint = pqErr.Constraint
	d.DBTable = pqErr.Table
	d.DBColumn = pqErr.Column
	d.DBDetail = pqErr.Detail
	d.DBMessage = pqErr.Message
	return true
}

// sqlite reports CHECK and UNIQUE failures only through the extended code and
// the message text.
func (d *ErrorDump) fillSQLite(err error) bool {
	var liteErr sqlite3.Error
	if !errors.As(err, &liteErr) {
		return false
	}
	d.Driver = "sqlite"
	d.DBCode = fmt.Sprintf("%d/%d", int(liteErr.Code), int(liteErr.ExtendedCode))
	d.DBMessage = liteErr.Error()
	return true
}
