// Package generate synthesizes constraint-satisfying rows from a planned
// schema: deterministic per-table/per-column PRNGs, gofakeit-backed value
// synthesis dispatched on SemanticKind, FK resolution against already
// generated parent keys, uniqueness enforcement, and check-constraint
// narrowing (spec.md §4.3).
package generate

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"
)

// derive hashes seed together with parts into a 64-bit value used to seed a
// sub-PRNG. Using FNV-1a over the seed bytes plus each part keeps derivation
// independent of map iteration order and of the number of parts, so the
// same (seed, table[, column]) always derives the same stream regardless of
// how many other tables or columns exist (spec.md §4.3 "Determinism").
func derive(seed int64, parts ...string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	for _, p := range parts {
		h.Write([]byte{0}) // separator so ("ab","c") != ("a","bc")
		h.Write([]byte(p))
	}
	return int64(h.Sum64())
}

// TableRand returns the deterministic sub-PRNG for table, derived by
// hashing (seed, table_name).
func TableRand(seed int64, table string) *rand.Rand {
	return rand.New(rand.NewSource(derive(seed, table)))
}

// ColumnRand returns the deterministic sub-PRNG for one column of one
// table, derived by hashing (seed, table_name, column_name).
func ColumnRand(seed int64, table, column string) *rand.Rand {
	return rand.New(rand.NewSource(derive(seed, table, column)))
}

// RowRand returns the deterministic sub-PRNG for one row within a table,
// derived by hashing (seed, table_name, row_index) stringified. Used for
// row-scoped decisions that must stay independent of column order, such as
// correlated-group selection and null-probability rolls.
func RowRand(seed int64, table string, rowIndex int) *rand.Rand {
	return rand.New(rand.NewSource(derive(seed, table, itoa(rowIndex))))
}

// ColumnFaker returns the deterministic gofakeit Faker for one column,
// seeded from the same (seed, table_name, column_name) derivation as
// ColumnRand, so gofakeit-backed and math/rand-backed values for one column
// stay reproducible together.
func ColumnFaker(seed int64, table, column string) *gofakeit.Faker {
	return gofakeit.New(uint64(derive(seed, table, column)))
}

// RowFaker returns the deterministic gofakeit Faker for one row, seeded
// from the same derivation as RowRand.
func RowFaker(seed int64, table string, rowIndex int) *gofakeit.Faker {
	return gofakeit.New(uint64(derive(seed, table, itoa(rowIndex))))
}

// RowColumnRand returns the deterministic sub-PRNG for one column of one
// row, derived by hashing (seed, table_name, column_name, row_index). This
// is the stream actual per-row column values are drawn from; ColumnRand
// alone would derive the same value for every row of a table.
func RowColumnRand(seed int64, table, column string, rowIndex int) *rand.Rand {
	return rand.New(rand.NewSource(derive(seed, table, column, itoa(rowIndex))))
}

// RowColumnFaker is RowColumnRand's gofakeit counterpart.
func RowColumnFaker(seed int64, table, column string, rowIndex int) *gofakeit.Faker {
	return gofakeit.New(uint64(derive(seed, table, column, itoa(rowIndex))))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
