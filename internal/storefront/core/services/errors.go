package services

import "errors"

var errNoImageHost = errors.New("media host not configured")
