package routes

// AuthLevel is the authentication a route demands
type AuthLevel string

const (
	Public   AuthLevel = "public"
	Required AuthLevel = "required"
)

// Rule is one entry of the permission table
type Rule struct {
	Method string    `yaml:"method"`
	Path   string    `yaml:"path"`
	Auth   AuthLevel `yaml:"auth"`
}

// Pattern renders the rule as a ServeMux pattern, e.g. "GET /api/folder"
func (r Rule) Pattern() string {
	return r.Method + " " + r.Path
}

// Table is the YAML document
type Table struct {
	Routes []Rule `yaml:"routes"`
}
