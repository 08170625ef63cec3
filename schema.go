package fabricate

import "encoding/json"

// Codebook documents a fabricated table: every column in order with its
// inferred kind and whether it is a level identifier.
type Codebook struct {
	NumRows int            `json:"num_rows"`
	Columns []ColumnSchema `json:"columns"`
}

// ColumnSchema describes one column of a fabricated table.
type ColumnSchema struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Identifier bool   `json:"identifier,omitempty"`
}

// DescribeTable builds a codebook for t. Kinds are inferred from the column
// values: number, string, bool, empty, or mixed.
func DescribeTable(t *Table) Codebook {
	book := Codebook{NumRows: t.NumRows()}
	ids := make(map[string]bool)
	for _, name := range DetectIdentifierColumns(t) {
		ids[name] = true
	}
	for _, name := range t.Columns() {
		values, _ := t.Column(name)
		book.Columns = append(book.Columns, ColumnSchema{
			Name:       name,
			Kind:       inferKind(values),
			Identifier: ids[name],
		})
	}
	return book
}

// ToJSON serialises the codebook.
func (b Codebook) ToJSON() ([]byte, error) {
	type alias Codebook
	return json.Marshal(alias(b))
}

func inferKind(values []any) string {
	if len(values) == 0 {
		return "empty"
	}
	kind := ""
	for _, v := range values {
		k := kindOf(v)
		if k == "" {
			continue
		}
		if kind == "" {
			kind = k
			continue
		}
		if kind != k {
			return "mixed"
		}
	}
	if kind == "" {
		return "empty"
	}
	return kind
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		if _, ok := toFloat(v); ok {
			return "number"
		}
		return "mixed"
	}
}
