package models

// ItemType is the kind of material held in the collection.
type ItemType string

const (
	ItemYarn   ItemType = "Yarn"
	ItemThread ItemType = "Thread"
)

// ItemTypes lists every accepted item type.
var ItemTypes = []interface{}{ItemYarn, ItemThread}

// CollectionItem is one yarn or thread in the user's stash.
type CollectionItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     ItemType `json:"type"`
	Brand    string   `json:"brand,omitempty"`
	Colour   string   `json:"colour"`
	Material string   `json:"material"`
	Weight   string   `json:"weight,omitempty"`
	Stock    int      `json:"stock"`
	Image    string   `json:"image,omitempty"`
}

// FileMetadata describes a file held by a storage provider.
type FileMetadata struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
	ModTime  int64  `json:"modTime"`
}
