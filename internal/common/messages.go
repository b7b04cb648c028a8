package common

import "errors"

// User-facing messages. Faults never carry driver detail past this point.
const (
	MsgUsernameNotCorrect = "username is not correct."
	MsgPasswordNotCorrect = "password is not correct."
	MsgBadCredentials     = "username or password is not correct."
	MsgEmailExists        = "email already exists"
	MsgRegistrationFailed = "registration failed, please try again later."
	MsgValidation         = "email and password are required."
	MsgSecretTooLong      = "password is too long."
	MsgGeneric            = "an error occurred, please try again later."
)

// UserMessage maps an error returned by the account service to the message
// shown to the client.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountNotFound):
		return MsgUsernameNotCorrect
	case errors.Is(err, ErrBadSecret):
		return MsgPasswordNotCorrect
	case errors.Is(err, ErrorAlreadyExists):
		return MsgEmailExists
	case errors.Is(err, ErrSecretTooLong):
		return MsgSecretTooLong
	case errors.Is(err, ErrorValidation):
		return MsgValidation
	default:
		return MsgGeneric
	}
}

// GenericLoginMessage is UserMessage with NotFound and BadSecret collapsed
// into one message so a response does not reveal whether an email is known.
func GenericLoginMessage(err error) string {
	if errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrBadSecret) {
		return MsgBadCredentials
	}
	return UserMessage(err)
}
