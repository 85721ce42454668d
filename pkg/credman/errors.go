package credman

import "errors"

var (
	ErrIncompleteAccount = errors.New("account needs a name, url and token")
	ErrAccountNotFound   = errors.New("account not found")
	ErrNoAccounts        = errors.New("no accounts saved")
)
