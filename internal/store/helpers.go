package store

import (
	"errors"

	"gorm.io/gorm"
)

func errIsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
