package handler

// --- Request / Response types ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// verifyRequest carries the query parameters of the emailed verification
// link.
type verifyRequest struct {
	Username string `query:"username" validate:"required"`
	Key      string `query:"key"      validate:"required"`
}

// resendRequest carries the username as an opaque value from the
// needs-verification login outcome; the user does not re-enter it.
type resendRequest struct {
	Username string `json:"username" validate:"required"`
}

type resetRequest struct {
	Username string `json:"username" validate:"required"`
}

type resetCompleteRequest struct {
	Username  string `json:"username"  validate:"required"`
	Key       string `json:"key"       validate:"required"`
	Password1 string `json:"password1" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

type sessionResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type statusResponse struct {
	Status string `json:"status"`
}
