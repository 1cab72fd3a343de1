package delivery

import "errors"

var (
	ErrInvalidConfig = errors.New("delivery.errors.invalid_config")
	ErrEmptyMessage  = errors.New("delivery.errors.empty_message")
	ErrDelivery      = errors.New("delivery.errors.delivery_failed")
)
