package odoo

// Domain is an Odoo search domain: a list of (field, operator, value)
// triples, ANDed by default. Alternation uses the prefix OrMarker, exactly as
// the remote store encodes it: {"|", termA, termB} matches A or B.
type Domain []interface{}

// OrMarker ORs the two terms that follow it.
const OrMarker = "|"

// Eq builds an equality term.
func Eq(field string, value interface{}) []interface{} {
	return []interface{}{field, "=", value}
}

// In builds a membership term.
func In(field string, value interface{}) []interface{} {
	return []interface{}{field, "in", value}
}

// Gte builds a greater-or-equal term.
func Gte(field string, value interface{}) []interface{} {
	return []interface{}{field, ">=", value}
}

// raw converts the domain into the []interface{} shape the transport expects.
func (d Domain) raw() []interface{} {
	out := make([]interface{}, len(d))
	copy(out, d)
	return out
}
