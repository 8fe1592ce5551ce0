package repository

import "gorm.io/gorm"

// Transactor runs fn with repositories bound to one database transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(fn func(products ProductRepository, orders OrderRepository) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db}
}

func (t *gormTransactor) WithinTransaction(fn func(products ProductRepository, orders OrderRepository) error) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewProductRepo(tx), NewOrderRepo(tx))
	})
}
