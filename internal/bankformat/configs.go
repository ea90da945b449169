// Package bankformat identifies which bank's column layout a CSV export uses
// and maps its headers to the semantic fields the parser needs.
package bankformat

// Field names the semantic columns a bank CSV must (or may) carry.
type Field string

const (
	FieldDate        Field = "date"
	FieldAmount      Field = "amount"
	FieldDescription Field = "description"
	FieldType        Field = "type"
)

// GenericFormat is the fallback when no bank layout scores.
const GenericFormat = "generic"

// Config is the static description of one bank's CSV dialect: ordered
// candidate header names per field plus keywords that hint at the bank.
// Configs are read-only; they are never mutated at runtime.
type Config struct {
	Name               string
	DateColumns        []string
	AmountColumns      []string
	DescriptionColumns []string
	TypeColumns        []string
	DetectKeywords     []string
}

// Columns returns the candidate header names for a field, in priority order.
func (c *Config) Columns(f Field) []string {
	switch f {
	case FieldDate:
		return c.DateColumns
	case FieldAmount:
		return c.AmountColumns
	case FieldDescription:
		return c.DescriptionColumns
	case FieldType:
		return c.TypeColumns
	}
	return nil
}

// configs holds every known bank dialect, checked in declaration order.
// The generic entry stays last so named banks win score ties.
var configs = []*Config{
	{
		Name:               "chase",
		DateColumns:        []string{"Transaction Date", "Post Date", "Posting Date"},
		AmountColumns:      []string{"Amount"},
		DescriptionColumns: []string{"Description"},
		TypeColumns:        []string{"Type", "Details"},
		DetectKeywords:     []string{"chase"},
	},
	{
		Name:               "bank_of_america",
		DateColumns:        []string{"Date", "Posted Date"},
		AmountColumns:      []string{"Amount"},
		DescriptionColumns: []string{"Description", "Payee"},
		TypeColumns:        nil,
		DetectKeywords:     []string{"bank of america", "running bal"},
	},
	{
		Name:               "wells_fargo",
		DateColumns:        []string{"Date"},
		AmountColumns:      []string{"Amount"},
		DescriptionColumns: []string{"Description"},
		TypeColumns:        nil,
		DetectKeywords:     []string{"wells fargo", "check number"},
	},
	{
		Name:               "citi",
		DateColumns:        []string{"Date"},
		AmountColumns:      []string{"Debit", "Credit", "Amount"},
		DescriptionColumns: []string{"Description"},
		TypeColumns:        nil,
		DetectKeywords:     []string{"citi", "member name"},
	},
	{
		Name:               "capital_one",
		DateColumns:        []string{"Transaction Date", "Posted Date"},
		AmountColumns:      []string{"Debit", "Credit", "Transaction Amount"},
		DescriptionColumns: []string{"Description", "Transaction Description"},
		TypeColumns:        []string{"Transaction Type"},
		DetectKeywords:     []string{"capital one", "card no."},
	},
	{
		Name:               "amex",
		DateColumns:        []string{"Date"},
		AmountColumns:      []string{"Amount"},
		DescriptionColumns: []string{"Description"},
		TypeColumns:        nil,
		DetectKeywords:     []string{"amex", "american express", "extended details"},
	},
	{
		Name:               GenericFormat,
		DateColumns:        []string{"Date", "Transaction Date", "Posted Date", "Posting Date", "Trans Date"},
		AmountColumns:      []string{"Amount", "Transaction Amount", "Value"},
		DescriptionColumns: []string{"Description", "Memo", "Payee", "Name", "Details"},
		TypeColumns:        []string{"Type", "Transaction Type", "Details"},
		DetectKeywords:     nil,
	},
}

// Lookup returns the config for a format name, falling back to generic.
func Lookup(name string) *Config {
	for _, c := range configs {
		if c.Name == name {
			return c
		}
	}
	return configs[len(configs)-1]
}
