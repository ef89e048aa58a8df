package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("Invalid parameters.")
	ErrUserNotFound      = errors.New("User not found.")
	ErrUserExist         = errors.New("User already exists.")
	ErrUserUsernameExist = errors.New("Username already taken")
	ErrUserEmailExist    = errors.New("Email already taken")
	ErrUserEmailRequired = errors.New("Email is required.")
	ErrPasswordIncorrect = errors.New("Invalid credentials.")
	ErrUserFollowExist   = errors.New("Already following this user.")
	ErrUserFollowSelf    = errors.New("You cannot follow yourself.")
	ErrMessageNotFound   = errors.New("Message not found.")
	ErrLikeOwnMessage    = errors.New("You cannot like your own message.")
	UnauthorizedError    = errors.New("Access unauthorized.")
	UnExpectedError      = errors.New("Something went wrong, please try again later.")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrUserNotFound:      NotFound,
	ErrUserExist:         BadRequest,
	ErrUserUsernameExist: BadRequest,
	ErrUserEmailExist:    BadRequest,
	ErrUserEmailRequired: BadRequest,
	ErrPasswordIncorrect: Unauthorized,
	ErrUserFollowExist:   BadRequest,
	ErrUserFollowSelf:    BadRequest,
	ErrMessageNotFound:   NotFound,
	ErrLikeOwnMessage:    BadRequest,
	UnauthorizedError:    Unauthorized,
	UnExpectedError:      InternalServerError,
}

// CodeOf 返回错误对应的业务码，ok 为 false 表示未知错误
func CodeOf(err error) (int, bool) {
	if code, ok := ErrorMap[err]; ok {
		return code, true
	}
	for sentinel, code := range ErrorMap {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return InternalServerError, false
}
