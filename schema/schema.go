package schema

type Schema struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Index returns the position of the named column or -1.
func (s Schema) Index(name string) int {
	for idx, it := range s.Columns {
		if it.Name == name {
			return idx
		}
	}
	return -1
}

func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for idx, it := range s.Columns {
		names[idx] = it.Name
	}
	return names
}
