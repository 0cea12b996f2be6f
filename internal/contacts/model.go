package contacts

// Contact is a person who has submitted at least one message. The pair
// (Email, Phone) is unique across all contacts.
type Contact struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
