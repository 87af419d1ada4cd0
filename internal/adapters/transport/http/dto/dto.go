package dto

// RegisterDTO carries the multipart registration form. The two local paths are
// filled in by the handler after it spools the uploaded files to disk; they
// are not client-settable fields.
type RegisterDTO struct {
	FullName string `json:"fullName" form:"fullName" validate:"required"`
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Username string `json:"username" form:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" form:"password" validate:"required,min=6"`

	AvatarLocalPath     string `json:"-" form:"-"`
	CoverImageLocalPath string `json:"-" form:"-"`
}

// LoginDTO accepts either username or email; at least one must be set.
type LoginDTO struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refreshToken"`
}
