package identityprovider

// CreateAccountRequest запрос на создание аккаунта у провайдера.
type CreateAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccountResponse ответ провайдера на создание аккаунта.
type CreateAccountResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// ErrorResponse тело ошибки провайдера.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
