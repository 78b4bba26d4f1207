package shared

type Error string

// Implement the error interface
func (e Error) Error() string { return string(e) }

//------------
// Definitions
//------------

// cli errors
const (
	ErrorCreateFile = Error("could not create the file")
	ErrorEncodeFile = Error("could not encode to file")
)

// category store errors
const (
	ErrInvalidCategoryID = Error("invalid category id")
	ErrCategoryExists    = Error("category already exists")
	ErrCategoryNotFound  = Error("category not found")
	ErrCategoryNotEmpty  = Error("category is not empty")
)

// shape repository errors
const (
	ErrInvalidShapeID = Error("invalid shape id")
	ErrShapeNotFound  = Error("shape not found")
	ErrConflict       = Error("concurrent modification detected")
)
