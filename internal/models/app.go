package models

// App categories accepted by the catalog.
const (
	CategoryInternal = "internal"
	CategoryExternal = "external"
)

// AppRecord is one catalog entry. It is stored as a standalone JSON file whose
// name is derived from Title; ID is the stable identity.
type AppRecord struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription"`
	Tags            []string `json:"tags"`
	Category        string   `json:"category"`
	PreviewImage    string   `json:"previewImage"`
	Images          []string `json:"images"`
	IsNew           bool     `json:"isNew,omitempty"`
	// Order is the legacy position field, only consulted when no order list exists.
	Order *int `json:"order,omitempty"`
}

func IsValidCategory(category string) bool {
	return category == CategoryInternal || category == CategoryExternal
}
