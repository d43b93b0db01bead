package config

import "errors"

var errNoDB = errors.New("database not connected")
