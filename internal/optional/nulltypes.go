package optional

import (
	"database/sql"

	"golang.org/x/exp/constraints"
)

// FromNullInt64 converts a nullable SQL integer into an Optional of an integer type.
func FromNullInt64[T constraints.Integer](v sql.NullInt64) Optional[T] {
	if !v.Valid {
		return Optional[T]{}
	}
	return New(T(v.Int64))
}

// ToNullInt64 converts an Optional of an integer type into a nullable SQL integer.
func ToNullInt64[T constraints.Integer](o Optional[T]) sql.NullInt64 {
	if o.IsEmpty() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(o.value), Valid: true}
}
