package archive

import "github.com/heritage-bijoux/appraiser/internal/draft"

// DateLayout is the local calendar date format of Item.Date.
const DateLayout = "2006-01-02"

// Item is an independent snapshot of a published draft.
type Item struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Price       int      `json:"price" yaml:"price"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Date        string   `json:"date" yaml:"date"`
	Image       string   `json:"image,omitempty" yaml:"-"`
	RemoteID    string   `json:"remote_id,omitempty" yaml:"remote_id,omitempty"`
}

// Draft rebuilds an editable draft from the snapshot fields.
func (i Item) Draft() *draft.Draft {
	return &draft.Draft{
		Title:       i.Title,
		Price:       i.Price,
		Description: i.Description,
		Tags:        append([]string{}, i.Tags...),
	}
}

func (i Item) clone() Item {
	if i.Tags != nil {
		i.Tags = append([]string(nil), i.Tags...)
	}
	return i
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}
