package generate

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/seedkit/seedkit/schema"
)

// group identifies one of the three jointly-generated column clusters
// (spec.md §4.3 "Correlated columns"). Columns outside a recognized group
// are generated independently, one gofakeit call per column.
type group string

const (
	groupLocation group = "location"
	groupPerson   group = "person"
	groupTemporal group = "temporal"
)

var groupKinds = map[schema.SemanticKind]group{
	schema.KindStreet:  groupLocation,
	schema.KindCity:    groupLocation,
	schema.KindState:   groupLocation,
	schema.KindZip:     groupLocation,
	schema.KindCountry: groupLocation,

	schema.KindFirstName: groupPerson,
	schema.KindLastName:  groupPerson,
	schema.KindFullName:  groupPerson,
	schema.KindEmail:     groupPerson,
	schema.KindUsername:  groupPerson,

	schema.KindCreatedAt: groupTemporal,
	schema.KindUpdatedAt: groupTemporal,
}

// locationValues is the jointly-generated output of the Location group: a
// single gofakeit address feeds every address-shaped column of a row so
// city/state/zip/country agree with each other.
type locationValues struct {
	street, city, state, zip, country string
}

func genLocation(f *gofakeit.Faker) locationValues {
	addr := f.Address()
	return locationValues{
		street:  addr.Address,
		city:    addr.City,
		state:   addr.State,
		zip:     addr.Zip,
		country: addr.Country,
	}
}

func (l locationValues) forKind(k schema.SemanticKind) string {
	switch k {
	case schema.KindStreet:
		return l.street
	case schema.KindCity:
		return l.city
	case schema.KindState:
		return l.state
	case schema.KindZip:
		return l.zip
	case schema.KindCountry:
		return l.country
	}
	return ""
}

// personValues is the jointly-generated output of the Person group: first
// and last name are drawn once and every name/email/username-shaped column
// derives from that same pair, so "ada.lovelace@example.com" plausibly
// belongs to "Ada Lovelace" (spec.md §8 scenario 4).
type personValues struct {
	first, last, full, email, username string
}

func genPerson(f *gofakeit.Faker) personValues {
	first := f.FirstName()
	last := f.LastName()
	slug := strings.ToLower(first + "." + last)
	return personValues{
		first:    first,
		last:     last,
		full:     first + " " + last,
		email:    fmt.Sprintf("%s@%s", slug, f.DomainName()),
		username: slug,
	}
}

func (p personValues) forKind(k schema.SemanticKind) string {
	switch k {
	case schema.KindFirstName:
		return p.first
	case schema.KindLastName:
		return p.last
	case schema.KindFullName:
		return p.full
	case schema.KindEmail:
		return p.email
	case schema.KindUsername:
		return p.username
	}
	return ""
}

// temporalValues is the jointly-generated output of the Temporal pair:
// CreatedAt is the instant the caller passes in (generateRow passes the
// same point three years before now for every row) and UpdatedAt is drawn
// up to a year after it, so the pair never violates the natural invariant
// updated_at >= created_at (spec.md §4.3 "Correlated columns").
type temporalValues struct {
	createdAt, updatedAt time.Time
}

func genTemporal(r *rand.Rand, createdAt time.Time) temporalValues {
	delta := r.Int63n(int64(365 * 24 * time.Hour))
	return temporalValues{
		createdAt: createdAt,
		updatedAt: createdAt.Add(time.Duration(delta)),
	}
}

func (t temporalValues) forKind(k schema.SemanticKind) time.Time {
	switch k {
	case schema.KindCreatedAt:
		return t.createdAt
	case schema.KindUpdatedAt:
		return t.updatedAt
	}
	return time.Time{}
}
