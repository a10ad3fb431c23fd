package schema

type Column struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}
