package schema

// SemanticKind is the closed tagged union of generator-dispatch labels
// assigned by classification (spec.md §3/§4.2). It lives in schema (rather
// than classify) because Column carries it directly once classification
// has run, and generate dispatches on it without needing to import the
// classifier.
type SemanticKind string

const (
	KindUnknown SemanticKind = "unknown"

	// Structural kinds. PK, FK and EnumOf are assigned before rule
	// matching and never overridden by a name-based rule; Boolean, JSON
	// and UUID come from declared-type rules that apply only when no
	// name-based rule matched first.
	KindPK      SemanticKind = "pk"
	KindFK      SemanticKind = "fk"
	KindBoolean SemanticKind = "boolean"
	KindJSON    SemanticKind = "json"
	KindUUID    SemanticKind = "uuid"
	KindEnumOf  SemanticKind = "enum_of" // paired with Column.Type.EnumName

	// Identity.
	KindEmail     SemanticKind = "email"
	KindFirstName SemanticKind = "first_name"
	KindLastName  SemanticKind = "last_name"
	KindFullName  SemanticKind = "full_name"
	KindUsername  SemanticKind = "username"
	KindPhone     SemanticKind = "phone"

	// Address.
	KindStreet  SemanticKind = "street"
	KindCity    SemanticKind = "city"
	KindState   SemanticKind = "state"
	KindZip     SemanticKind = "zip"
	KindCountry SemanticKind = "country"

	// Temporal.
	KindCreatedAt SemanticKind = "created_at"
	KindUpdatedAt SemanticKind = "updated_at"
	KindBirthdate SemanticKind = "birthdate"
	KindEventTime SemanticKind = "event_time"

	// Numeric.
	KindPrice      SemanticKind = "price"
	KindQuantity   SemanticKind = "quantity"
	KindPercentage SemanticKind = "percentage"
	KindAge        SemanticKind = "age"
	KindRating     SemanticKind = "rating"

	// Text.
	KindSlug        SemanticKind = "slug"
	KindTitle       SemanticKind = "title"
	KindDescription SemanticKind = "description"
	KindURL         SemanticKind = "url"
	KindHex         SemanticKind = "hex"
	KindToken       SemanticKind = "token"
	KindHash        SemanticKind = "hash"
	KindIP          SemanticKind = "ip"
)

// EnumOf builds the EnumOf{name} kind as the string "enum_of:<name>", so
// the kind itself names the enum type. The same enum name is also carried
// on the column's LogicalType.EnumName, set by ParseEnumRef during
// introspection.
func EnumOf(name string) SemanticKind {
	return SemanticKind("enum_of:" + name)
}

// PII reports whether this kind is PII-classified (spec.md §6 "PII
// columns"). Nothing in the generator or the sinks consults it; values of
// these kinds are emitted unmasked.
func (k SemanticKind) PII() bool {
	switch k {
	case KindEmail, KindPhone, KindFirstName, KindLastName, KindFullName,
		KindStreet, KindToken, KindHash:
		return true
	}
	return false
}
