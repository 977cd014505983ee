package graph

import "strings"

// Style tokens understood by the rendering surface.
const (
	StyleFamily     = "family"
	StyleBusiness   = "business"
	StyleEmployment = "employment"
	StyleLegal      = "legal"
	StyleAssociate  = "associate"
	StyleContact    = "contact"
	StyleDefault    = "default"
)

// relationSynonyms lists, per style token, the relation kinds (English and
// Spanish spellings seen in source data) that render with it.
var relationSynonyms = map[string][]string{
	StyleFamily:     {"family", "familiar", "familia", "parent", "padre", "madre", "hijo", "hija", "sibling", "hermano", "hermana", "spouse", "conyuge", "cónyuge"},
	StyleBusiness:   {"business", "negocio", "socio", "partner", "accionista", "shareholder", "owner"},
	StyleEmployment: {"employment", "laboral", "employee", "empleado", "employer", "patron", "patrón"},
	StyleLegal:      {"legal", "representante", "apoderado", "notary"},
	StyleAssociate:  {"associate", "asociado", "conocido"},
	StyleContact:    {"contact", "contacto", "domicilio", "address"},
}

var relationStyles = func() map[string]string {
	m := make(map[string]string)
	for token, kinds := range relationSynonyms {
		for _, k := range kinds {
			m[k] = token
		}
	}
	return m
}()

// StyleFor returns the style token for a relation kind. Matching ignores case
// and surrounding whitespace; unknown kinds get StyleDefault.
func StyleFor(relationKind string) string {
	if token, ok := relationStyles[strings.ToLower(strings.TrimSpace(relationKind))]; ok {
		return token
	}
	return StyleDefault
}
