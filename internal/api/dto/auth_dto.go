package dto

// LoginRequest payload for POST /auth/login. The endpoint accepts
// form-encoded bodies; JSON works too via the same tags.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResponse is the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
