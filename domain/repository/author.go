package repository

// Author identifies who wrote or committed a Git commit.
type Author struct {
	name  string
	email string
}

// NewAuthor creates a new Author.
func NewAuthor(name, email string) Author {
	return Author{name: name, email: email}
}

// Name returns the author's name.
func (a Author) Name() string { return a.name }

// Email returns the author's email.
func (a Author) Email() string { return a.email }

// IsEmpty reports whether the author has no name.
func (a Author) IsEmpty() bool { return a.name == "" }

// String renders the conventional "Name <email>" form, or just the name
// when no email is known.
func (a Author) String() string {
	if a.email == "" {
		return a.name
	}
	return a.name + " <" + a.email + ">"
}

// Equal reports whether two Author values are equal.
func (a Author) Equal(other Author) bool { return a == other }
