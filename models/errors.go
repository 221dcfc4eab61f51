package models

import "errors"

var (
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrUnsupportedMode       = errors.New("unsupported mode")
	ErrUnsupportedOptionType = errors.New("unsupported option type")
)
