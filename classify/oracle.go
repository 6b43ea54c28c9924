package classify

import (
	"github.com/hashicorp/golang-lru/v2"
	"github.com/seedkit/seedkit/schema"
)

// ColumnView is the redacted view an Oracle sees: column/table identity and
// declared type plus sibling column names, never data (spec.md §4.2).
type ColumnView struct {
	Table        string
	Column       string
	DeclaredType string
	Siblings     []string
}

// Oracle is the opaque external classification assistant. It is an
// effectful capability isolated behind this pure-looking interface; the
// core pipeline is deterministic whenever the oracle is nil or every
// lookup hits the cache (spec.md §9).
type Oracle interface {
	Suggest(view ColumnView) (schema.SemanticKind, bool)
}

// cacheKey identifies one oracle lookup for caching purposes.
type cacheKey struct {
	Fingerprint string
	Table       string
	Column      string
}

// Cache wraps an Oracle with an LRU cache keyed by schema fingerprint plus
// column identity, built on hashicorp/golang-lru (grounded on the
// retrieved pgedge-anonymizer manifest, which pairs this library with a
// pgx/cobra/viper schema-driven pipeline). Entries are serialized into the
// lock file's oracle_cache field by lockfile.Write.
type Cache struct {
	oracle      Oracle
	fingerprint string
	lru         *lru.Cache[cacheKey, schema.SemanticKind]
}

// NewCache wraps oracle with an LRU of the given size, scoped to the
// schema identified by fingerprint. A nil oracle makes the Cache a no-op
// that always misses, so the classifier can unconditionally call through
// it.
func NewCache(oracle Oracle, fingerprint string, size int) *Cache {
	if size <= 0 {
		size = 1024
	}
	l, _ := lru.New[cacheKey, schema.SemanticKind](size)
	return &Cache{oracle: oracle, fingerprint: fingerprint, lru: l}
}

// Suggest consults the cache first, then the wrapped oracle on a miss,
// validating the suggestion against the known SemanticKind set before
// accepting it (spec.md §4.2: "accepted only if it matches a known
// SemanticKind; otherwise ignored").
func (c *Cache) Suggest(view ColumnView) (schema.SemanticKind, bool) {
	if c.oracle == nil {
		return "", false
	}
	key := cacheKey{Fingerprint: c.fingerprint, Table: view.Table, Column: view.Column}
	if kind, ok := c.lru.Get(key); ok {
		return kind, kind != schema.KindUnknown
	}
	kind, ok := c.oracle.Suggest(view)
	if !ok || !knownKind(kind) {
		c.lru.Add(key, schema.KindUnknown)
		return "", false
	}
	c.lru.Add(key, kind)
	return kind, true
}

// Entries returns the cache's contents as a plain map for lock-file
// serialization.
func (c *Cache) Entries() map[string]schema.SemanticKind {
	out := map[string]schema.SemanticKind{}
	for _, key := range c.lru.Keys() {
		if v, ok := c.lru.Peek(key); ok && v != schema.KindUnknown {
			out[key.Table+"."+key.Column] = v
		}
	}
	return out
}

func knownKind(k schema.SemanticKind) bool {
	switch k {
	case schema.KindUnknown:
		return false
	case schema.KindPK, schema.KindFK, schema.KindBoolean, schema.KindJSON, schema.KindUUID,
		schema.KindEmail, schema.KindFirstName, schema.KindLastName, schema.KindFullName,
		schema.KindUsername, schema.KindPhone, schema.KindStreet, schema.KindCity,
		schema.KindState, schema.KindZip, schema.KindCountry, schema.KindCreatedAt,
		schema.KindUpdatedAt, schema.KindBirthdate, schema.KindEventTime, schema.KindPrice,
		schema.KindQuantity, schema.KindPercentage, schema.KindAge, schema.KindRating,
		schema.KindSlug, schema.KindTitle, schema.KindDescription, schema.KindURL,
		schema.KindHex, schema.KindToken, schema.KindHash, schema.KindIP:
		return true
	}
	return len(k) > len("enum_of:") && k[:len("enum_of:")] == "enum_of:"
}
