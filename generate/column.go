package generate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/seedkit/seedkit/schema"
)

// genColumn produces one value for col using its classified SemanticKind,
// falling back to its LogicalKind when the column is Unknown or carries a
// structural kind (FK values are resolved by row.go and never reach here;
// PK columns do, and take the LogicalKind fallback). f is the column's own
// deterministic gofakeit faker (spec.md §4.3 "Value synthesis").
//
// Before dispatching on SemanticKind, it checks t's check constraints for a
// numeric bound on col (narrowRange) and, when one exists, draws directly
// from that window instead of the kind's generic default -- the spec's
// "narrow first" tier. satisfyChecks still re-validates and retries
// afterward, since a narrowed draw only accounts for the conjunctive
// numeric leaves narrowRange could parse, not every predicate shape.
func genColumn(f *gofakeit.Faker, t *schema.Table, col *schema.Column) (interface{}, error) {
	if bound, ok := narrowRange(t, col.Name); ok {
		if v, vok := genBounded(f, col.Type, bound); vok {
			return v, nil
		}
	}

	switch col.Kind {
	case schema.KindBoolean:
		return f.Bool(), nil
	case schema.KindUUID:
		return uuid.New().String(), nil
	case schema.KindJSON:
		return genJSON(f), nil

	case schema.KindEmail:
		return f.Email(), nil
	case schema.KindFirstName:
		return f.FirstName(), nil
	case schema.KindLastName:
		return f.LastName(), nil
	case schema.KindFullName:
		return f.Name(), nil
	case schema.KindUsername:
		return f.Username(), nil
	case schema.KindPhone:
		return f.Phone(), nil

	case schema.KindStreet:
		return f.Street(), nil
	case schema.KindCity:
		return f.City(), nil
	case schema.KindState:
		return f.State(), nil
	case schema.KindZip:
		return f.Zip(), nil
	case schema.KindCountry:
		return f.Country(), nil

	case schema.KindCreatedAt, schema.KindUpdatedAt, schema.KindEventTime:
		return randomTimestamp(f, col.Type), nil
	case schema.KindBirthdate:
		return f.DateRange(time.Now().AddDate(-90, 0, 0), time.Now().AddDate(-18, 0, 0)), nil

	case schema.KindPrice:
		return roundDecimal(f.Price(1, 1000), col.Type), nil
	case schema.KindQuantity:
		return f.Number(0, 999), nil
	case schema.KindPercentage:
		return roundDecimal(f.Float64Range(0, 100), col.Type), nil
	case schema.KindAge:
		return f.Number(0, 110), nil
	case schema.KindRating:
		return roundDecimal(f.Float64Range(1, 5), col.Type), nil

	case schema.KindSlug:
		return strings.ToLower(f.Word() + "-" + f.Word()), nil
	case schema.KindTitle:
		return strings.Title(f.LoremIpsumWord() + " " + f.LoremIpsumWord()), nil
	case schema.KindDescription:
		return f.LoremIpsumSentence(12), nil
	case schema.KindURL:
		return f.URL(), nil
	case schema.KindHex:
		return f.HexColor(), nil
	case schema.KindToken:
		return f.UUID() + f.UUID(), nil
	case schema.KindHash:
		return f.SHA256(), nil
	case schema.KindIP:
		return f.IPv4Address(), nil
	}

	if strings.HasPrefix(string(col.Kind), "enum_of:") {
		return genEnumPlaceholder(), nil
	}

	return genByLogicalType(f, col.Type), nil
}

// genBounded draws a value for lt within bound, when lt is a numeric kind
// narrowRange's window applies to. ok is false for non-numeric types, or
// when the window is empty (e.g. conflicting checks), so the caller falls
// back to its normal kind/type dispatch.
func genBounded(f *gofakeit.Faker, lt schema.LogicalType, bound numericBound) (interface{}, bool) {
	switch lt.Kind {
	case schema.LogicalInteger:
		low, high, ok := bound.integerRange()
		if !ok {
			return nil, false
		}
		low, high = clampInt(low, lt), clampInt(high, lt)
		if low > high {
			return nil, false
		}
		return int64(f.Number(int(low), int(high))), true
	case schema.LogicalDecimal, schema.LogicalFloat:
		low, high, ok := bound.floatRange()
		if !ok {
			return nil, false
		}
		return roundDecimal(f.Float64Range(low, high), lt), true
	default:
		return nil, false
	}
}

// genByLogicalType is the last-resort generator for columns whose
// SemanticKind stayed Unknown: it produces a plausible, type-correct value
// from the declared LogicalType alone (spec.md §4.2 "Unknown columns still
// generate a structurally valid value").
func genByLogicalType(f *gofakeit.Faker, lt schema.LogicalType) interface{} {
	switch lt.Kind {
	case schema.LogicalInteger:
		return clampInt(f.Int64(), lt)
	case schema.LogicalDecimal, schema.LogicalFloat:
		return roundDecimal(f.Float64Range(0, 1000), lt)
	case schema.LogicalBool:
		return f.Bool()
	case schema.LogicalText:
		return clampText(f.LoremIpsumSentence(6), lt)
	case schema.LogicalBytea:
		return f.LetterN(16)
	case schema.LogicalDate:
		return f.DateRange(time.Now().AddDate(-5, 0, 0), time.Now())
	case schema.LogicalTime:
		return f.DateRange(time.Now().AddDate(0, 0, -1), time.Now())
	case schema.LogicalTimestamp:
		return randomTimestamp(f, lt)
	case schema.LogicalUUID:
		return uuid.New().String()
	case schema.LogicalJSON:
		return genJSON(f)
	case schema.LogicalEnumRef:
		return genEnumPlaceholder()
	default:
		return clampText(f.LoremIpsumSentence(6), lt)
	}
}

func randomTimestamp(f *gofakeit.Faker, lt schema.LogicalType) time.Time {
	t := f.DateRange(time.Now().AddDate(-3, 0, 0), time.Now())
	if !lt.TZ {
		t = t.UTC()
	}
	return t
}

func clampInt(v int64, lt schema.LogicalType) int64 {
	switch lt.Width {
	case 16:
		if v > math.MaxInt16 {
			v = math.MaxInt16
		}
		if v < math.MinInt16 {
			v = math.MinInt16
		}
	case 32:
		if v > math.MaxInt32 {
			v = math.MaxInt32
		}
		if v < math.MinInt32 {
			v = math.MinInt32
		}
	}
	if !lt.Signed && v < 0 {
		v = -v
	}
	return v
}

func roundDecimal(v float64, lt schema.LogicalType) float64 {
	scale := lt.Scale
	if scale == 0 {
		scale = 2
	}
	mult := math.Pow(10, float64(scale))
	return math.Round(v*mult) / mult
}

func clampText(s string, lt schema.LogicalType) string {
	if lt.MaxLen > 0 && len(s) > lt.MaxLen {
		return s[:lt.MaxLen]
	}
	return s
}

func genJSON(f *gofakeit.Faker) string {
	return fmt.Sprintf(`{"note":%q,"n":%d}`, f.LoremIpsumWord(), f.Number(1, 100))
}

// genEnumPlaceholder is returned whenever genColumn itself is asked for an
// enum column's value (the primary-key and unique-resample paths). row.go's
// main column loop resolves enum columns directly against
// schema.EnumType.Labels instead, and leaves a column whose enum has no
// labels unset.
func genEnumPlaceholder() string { return "" }
