package publisher

import "errors"

// ErrPublish marks a notification that could not be delivered.
var ErrPublish = errors.New("publish notification")
