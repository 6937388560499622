package model

// Student is an enrollment of a person in a class.
type Student struct {
	ID       string
	ClassID  string
	FullName string
	Points   int
}
