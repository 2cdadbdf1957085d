package models

// Notice variants.
const (
	NoticeDefault     = "default"
	NoticeDestructive = "destructive"
)

// Notice is the short message shown to the shopper after an action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}
