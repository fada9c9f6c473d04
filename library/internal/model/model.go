package model

type Author struct {
	ID        int     `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	BirthDate *Date   `json:"birth_date"`
}

// AuthorRequest identifies an author by all three fields, a missing field
// matches only a null column.
type AuthorRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,max=255"`
	BirthDate *Date   `json:"birth_date"`
}

// AuthorPatch carries only the fields to overwrite.
type AuthorPatch struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,max=255"`
	BirthDate *Date   `json:"birth_date"`
}

func (p AuthorPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.BirthDate == nil
}

func (p AuthorPatch) AsRequest() AuthorRequest {
	return AuthorRequest(p)
}

type BookAuthorPatch struct {
	ID *int `json:"id"`
	AuthorPatch
}

type Book struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	AvailableCopies int     `json:"available_copies"`
	Author          *Author `json:"author"`
}

const DefaultCopies = 1

type CreateBookRequest struct {
	Title           string         `json:"title" validate:"required,max=255"`
	Description     *string        `json:"description"`
	AvailableCopies *int           `json:"available_copies" validate:"omitempty,min=0"`
	Author          *AuthorRequest `json:"author"`
}

// Copies is the stock a create adds, DefaultCopies when unset.
func (r CreateBookRequest) Copies() int {
	if r.AvailableCopies == nil {
		return DefaultCopies
	}
	return *r.AvailableCopies
}

type BookPatch struct {
	Title           *string          `json:"title" validate:"omitempty,min=1,max=255"`
	Description     *string          `json:"description"`
	AvailableCopies *int             `json:"available_copies" validate:"omitempty,min=0"`
	Author          *BookAuthorPatch `json:"author"`
}

type Borrow struct {
	ID           int    `json:"id"`
	BookID       int    `json:"book_id"`
	BorrowerName string `json:"borrower_name"`
	BorrowDate   Date   `json:"borrow_date"`
	ReturnDate   *Date  `json:"return_date"`
}

func (b Borrow) IsOpen() bool {
	return b.ReturnDate == nil
}

type CreateBorrowRequest struct {
	BookID       int    `json:"book_id"`
	BorrowerName string `json:"borrower_name"`
	BorrowDate   string `json:"borrow_date"`
}

type ReturnBorrowRequest struct {
	ReturnDate string `json:"return_date"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
