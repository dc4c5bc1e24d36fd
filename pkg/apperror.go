package pkg

// AppError is the error shape every HTTP handler returns: a stable machine
// code plus a human message, with the status code the handler should use.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewDomainErrorSimple(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func NewDomainError(code, message string, err error, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPStatus: httpStatus}
}

// ToHTTPError strips the internal cause so wire responses only carry the
// code and message.
func (e *AppError) ToHTTPError() map[string]string {
	return map[string]string{
		"code":    e.Code,
		"message": e.Message,
	}
}
