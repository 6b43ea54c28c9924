package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// LogicalKind is the closed set of logical column types the generator and
// classifier reason about, independent of any one dialect's spelling.
type LogicalKind string

const (
	LogicalInteger   LogicalKind = "integer"
	LogicalDecimal   LogicalKind = "decimal"
	LogicalFloat     LogicalKind = "float"
	LogicalText      LogicalKind = "text"
	LogicalBytea     LogicalKind = "bytea"
	LogicalBool      LogicalKind = "bool"
	LogicalDate      LogicalKind = "date"
	LogicalTime      LogicalKind = "time"
	LogicalTimestamp LogicalKind = "timestamp"
	LogicalUUID      LogicalKind = "uuid"
	LogicalJSON      LogicalKind = "json"
	LogicalEnumRef   LogicalKind = "enum_ref"
	LogicalUnknown   LogicalKind = "unknown"
)

// LogicalType is a parsed, parameterized column type: LogicalKind plus the
// parameters that matter for constraint-satisfying generation (integer
// width/signedness, decimal precision/scale, text max length, timestamp
// timezone-awareness, the referenced enum's name).
type LogicalType struct {
	Kind     LogicalKind `json:"kind"`
	Width    int         `json:"width,omitempty"`     // bits, for Integer
	Signed   bool        `json:"signed,omitempty"`    // for Integer
	Precision int        `json:"precision,omitempty"` // for Decimal
	Scale    int         `json:"scale,omitempty"`      // for Decimal
	MaxLen   int         `json:"max_len,omitempty"`    // for Text, 0 = unbounded
	TZ       bool        `json:"tz,omitempty"`         // for Timestamp
	EnumName string      `json:"enum_name,omitempty"`  // for EnumRef
}

var (
	varcharRe = regexp.MustCompile(`^(?:character varying|varchar)\s*\((\d+)\)$`)
	charRe    = regexp.MustCompile(`^(?:character|char)\s*\((\d+)\)$`)
	numericRe = regexp.MustCompile(`^(?:numeric|decimal)\s*\((\d+)\s*,\s*(\d+)\)$`)
)

// ParseLogicalType maps a raw declared SQL type (as introspection reports
// it) to a LogicalType. Unrecognized types are preserved as LogicalUnknown
// so the generator can at least treat them as opaque text.
func ParseLogicalType(declared string) LogicalType {
	t := strings.ToLower(strings.TrimSpace(declared))

	switch t {
	case "smallint", "int2":
		return LogicalType{Kind: LogicalInteger, Width: 16, Signed: true}
	case "integer", "int", "int4":
		return LogicalType{Kind: LogicalInteger, Width: 32, Signed: true}
	case "bigint", "int8":
		return LogicalType{Kind: LogicalInteger, Width: 64, Signed: true}
	case "real", "float4":
		return LogicalType{Kind: LogicalFloat, Width: 32}
	case "double precision", "float8":
		return LogicalType{Kind: LogicalFloat, Width: 64}
	case "boolean", "bool":
		return LogicalType{Kind: LogicalBool}
	case "text":
		return LogicalType{Kind: LogicalText}
	case "bytea":
		return LogicalType{Kind: LogicalBytea}
	case "date":
		return LogicalType{Kind: LogicalDate}
	case "time", "time without time zone":
		return LogicalType{Kind: LogicalTime}
	case "time with time zone", "timetz":
		return LogicalType{Kind: LogicalTime, TZ: true}
	case "timestamp", "timestamp without time zone":
		return LogicalType{Kind: LogicalTimestamp}
	case "timestamp with time zone", "timestamptz":
		return LogicalType{Kind: LogicalTimestamp, TZ: true}
	case "uuid":
		return LogicalType{Kind: LogicalUUID}
	case "json", "jsonb":
		return LogicalType{Kind: LogicalJSON}
	}

	if m := varcharRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return LogicalType{Kind: LogicalText, MaxLen: n}
	}
	if m := charRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return LogicalType{Kind: LogicalText, MaxLen: n}
	}
	if m := numericRe.FindStringSubmatch(t); m != nil {
		p, _ := strconv.Atoi(m[1])
		s, _ := strconv.Atoi(m[2])
		return LogicalType{Kind: LogicalDecimal, Precision: p, Scale: s}
	}
	if t == "numeric" || t == "decimal" {
		return LogicalType{Kind: LogicalDecimal, Precision: 18, Scale: 2}
	}

	return LogicalType{Kind: LogicalUnknown}
}

// ParseEnumRef returns the LogicalType for a column whose declared type
// names one of the schema's enum types, used by introspection once it has
// matched the declared type string against Schema.Enums.
func ParseEnumRef(enumName string) LogicalType {
	return LogicalType{Kind: LogicalEnumRef, EnumName: enumName}
}
