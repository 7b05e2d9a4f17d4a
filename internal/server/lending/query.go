package lending

// BookFilter carries the optional search criteria for books. A nil field is
// not filtered on. Title and Author match case-insensitively as substrings.
type BookFilter struct {
	Title     *string
	Author    *string
	Available *bool
}

// Shape identifies which of the eight filter combinations is present.
type Shape int

const (
	ShapeAll Shape = iota
	ShapeTitle
	ShapeAuthor
	ShapeAvailable
	ShapeTitleAuthor
	ShapeTitleAvailable
	ShapeAuthorAvailable
	ShapeTitleAuthorAvailable
)

func (s Shape) String() string {
	switch s {
	case ShapeAll:
		return "all"
	case ShapeTitle:
		return "title"
	case ShapeAuthor:
		return "author"
	case ShapeAvailable:
		return "available"
	case ShapeTitleAuthor:
		return "title+author"
	case ShapeTitleAvailable:
		return "title+available"
	case ShapeAuthorAvailable:
		return "author+available"
	case ShapeTitleAuthorAvailable:
		return "title+author+available"
	default:
		return "unknown"
	}
}

// Shape selects the query shape for f.
func (f BookFilter) Shape() Shape {
	title, author, available := f.Title != nil, f.Author != nil, f.Available != nil

	switch {
	case title && author && available:
		return ShapeTitleAuthorAvailable
	case title && author:
		return ShapeTitleAuthor
	case title && available:
		return ShapeTitleAvailable
	case author && available:
		return ShapeAuthorAvailable
	case title:
		return ShapeTitle
	case author:
		return ShapeAuthor
	case available:
		return ShapeAvailable
	default:
		return ShapeAll
	}
}
