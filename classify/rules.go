package classify

import (
	"regexp"
	"strings"

	"github.com/seedkit/seedkit/schema"
)

// Rule is one entry of the ordered rule set: a column-name regex, an
// optional table-name regex, and an optional constraint on LogicalKind.
// The first rule whose patterns all match wins (spec.md §4.2).
type Rule struct {
	NamePattern  *regexp.Regexp
	TablePattern *regexp.Regexp
	LogicalKind  schema.LogicalKind // "" means "any"
	Kind         schema.SemanticKind
}

func must(pattern string) *regexp.Regexp { return regexp.MustCompile("^(?:" + pattern + ")$") }

// rules is the ordered, ~50-entry rule table. Earlier entries take
// priority; normalizeName strips a trailing _id/_at/_flag purely for
// matching purposes (spec.md §4.2), never for column identity.
var rules = []Rule{
	// Identity.
	{NamePattern: must(`email|e_?mail|email_address`), Kind: schema.KindEmail},
	{NamePattern: must(`first_?name|given_?name|fname`), Kind: schema.KindFirstName},
	{NamePattern: must(`last_?name|surname|family_?name|lname`), Kind: schema.KindLastName},
	{NamePattern: must(`full_?name|display_?name`), Kind: schema.KindFullName},
	{NamePattern: must(`user_?name|login|handle`), Kind: schema.KindUsername},
	{NamePattern: must(`phone|phone_?number|mobile|tel`), Kind: schema.KindPhone},

	// Address.
	{NamePattern: must(`street|address_?line_?1|addr1|address`), Kind: schema.KindStreet},
	{NamePattern: must(`city|town`), Kind: schema.KindCity},
	{NamePattern: must(`state|province|region`), Kind: schema.KindState},
	{NamePattern: must(`zip|zip_?code|postal_?code|postcode`), Kind: schema.KindZip},
	{NamePattern: must(`country|country_?code`), Kind: schema.KindCountry},

	// Temporal.
	{NamePattern: must(`created|created_?at|created_?on|inserted_?at`), Kind: schema.KindCreatedAt},
	{NamePattern: must(`updated|updated_?at|modified_?at|last_?modified`), Kind: schema.KindUpdatedAt},
	{NamePattern: must(`birth_?date|date_?of_?birth|dob`), Kind: schema.KindBirthdate},
	{NamePattern: must(`event_?time|occurred_?at|happened_?at|timestamp`), Kind: schema.KindEventTime},

	// Numeric.
	{NamePattern: must(`price|amount|cost|unit_?price|total`), Kind: schema.KindPrice},
	{NamePattern: must(`quantity|qty|count|stock`), Kind: schema.KindQuantity},
	{NamePattern: must(`percent|percentage|pct|rate`), Kind: schema.KindPercentage},
	{NamePattern: must(`age`), Kind: schema.KindAge},
	{NamePattern: must(`rating|score|stars`), Kind: schema.KindRating},

	// Text.
	{NamePattern: must(`slug`), Kind: schema.KindSlug},
	{NamePattern: must(`title|headline`), Kind: schema.KindTitle},
	{NamePattern: must(`description|summary|bio|about`), Kind: schema.KindDescription},
	{NamePattern: must(`url|link|website|homepage`), Kind: schema.KindURL},
	{NamePattern: must(`color|hex|hex_?code`), Kind: schema.KindHex},
	{NamePattern: must(`token|api_?key|secret`), Kind: schema.KindToken},
	{NamePattern: must(`hash|checksum|digest`), Kind: schema.KindHash},
	{NamePattern: must(`ip|ip_?address|ipv4|ipv6`), Kind: schema.KindIP},

	// Declared-type-backed fallbacks.
	{LogicalKind: schema.LogicalBool, Kind: schema.KindBoolean},
	{LogicalKind: schema.LogicalJSON, Kind: schema.KindJSON},
	{LogicalKind: schema.LogicalUUID, Kind: schema.KindUUID},

	// Additional synonyms, kept separate from their primary entries above
	// so each can be independently reordered without disturbing the rest.
	{NamePattern: must(`contact_?email|billing_?email`), Kind: schema.KindEmail},
	{NamePattern: must(`nick_?name|alias`), Kind: schema.KindUsername},
	{NamePattern: must(`cell_?phone|fax`), Kind: schema.KindPhone},
	{NamePattern: must(`address_?line_?2|addr2|suite|apt`), Kind: schema.KindStreet},
	{NamePattern: must(`zip_?plus4|postal`), Kind: schema.KindZip},
	{NamePattern: must(`nation|locale_?country`), Kind: schema.KindCountry},
	{NamePattern: must(`deleted_?at|archived_?at`), Kind: schema.KindUpdatedAt},
	{NamePattern: must(`published_?at|posted_?at`), Kind: schema.KindEventTime},
	{NamePattern: must(`list_?price|sale_?price|msrp`), Kind: schema.KindPrice},
	{NamePattern: must(`on_?hand|available_?qty|inventory`), Kind: schema.KindQuantity},
	{NamePattern: must(`discount_?rate|tax_?rate`), Kind: schema.KindPercentage},
	{NamePattern: must(`years_?old`), Kind: schema.KindAge},
	{NamePattern: must(`avg_?rating|review_?score`), Kind: schema.KindRating},
	{NamePattern: must(`permalink|seo_?slug`), Kind: schema.KindSlug},
	{NamePattern: must(`heading|subject`), Kind: schema.KindTitle},
	{NamePattern: must(`notes|comment|remarks`), Kind: schema.KindDescription},
	{NamePattern: must(`website_?url|image_?url|avatar_?url`), Kind: schema.KindURL},
	{NamePattern: must(`theme_?color|accent_?color`), Kind: schema.KindHex},
	{NamePattern: must(`session_?token|refresh_?token`), Kind: schema.KindToken},
	{NamePattern: must(`sha256|md5|content_?hash`), Kind: schema.KindHash},
	{NamePattern: must(`client_?ip|remote_?addr`), Kind: schema.KindIP},

	// Table-scoped overrides: a "name" column on a products/categories
	// table reads as a Title, not a person's name.
	{NamePattern: must(`name`), TablePattern: must(`products?|categories|categor(y|ies)|brands?|tags?`), Kind: schema.KindTitle},
	{NamePattern: must(`name`), Kind: schema.KindFullName},
}

// normalizeName lowercases and strips a trailing _id/_at/_flag suffix,
// purely for rule matching (spec.md §4.2): "created_at" still matches the
// CreatedAt rule via its own pattern, but this normalization lets a
// generic "is_active_flag" match the same rule as "is_active".
func normalizeName(name string) string {
	n := strings.ToLower(name)
	for _, suffix := range []string{"_id", "_at", "_flag"} {
		n = strings.TrimSuffix(n, suffix)
	}
	return n
}

// matchRules returns the first matching rule's kind, or KindUnknown. A
// name pattern matches when it matches either the normalized name or the
// lowercased column name as declared.
func matchRules(table, column string, lt schema.LogicalType) schema.SemanticKind {
	name := normalizeName(column)
	raw := strings.ToLower(column)
	for _, r := range rules {
		if r.LogicalKind != "" && r.LogicalKind != lt.Kind {
			continue
		}
		if r.NamePattern != nil && !r.NamePattern.MatchString(name) && !r.NamePattern.MatchString(raw) {
			continue
		}
		if r.TablePattern != nil && !r.TablePattern.MatchString(strings.ToLower(table)) {
			continue
		}
		return r.Kind
	}
	return schema.KindUnknown
}
