package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 数据访问入口，持有同一连接（或同一事务）上的全部仓库
type Store struct {
	db         *gorm.DB
	Products   ProductRepository
	Categories CategoryRepository
	Carts      CartRepository
	Users      UserRepository
}

// NewStore 基于数据库句柄创建 Store
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Products:   NewProductRepository(db),
		Categories: NewCategoryRepository(db),
		Carts:      NewCartRepository(db),
		Users:      NewUserRepository(db),
	}
}

// DB 返回底层句柄
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithContext 返回绑定请求上下文的 Store
func (s *Store) WithContext(ctx context.Context) *Store {
	if ctx == nil {
		return s
	}
	return s.bind(s.db.WithContext(ctx))
}

func (s *Store) bind(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Products:   s.Products.WithTx(db),
		Categories: s.Categories.WithTx(db),
		Carts:      s.Carts.WithTx(db),
		Users:      s.Users.WithTx(db),
	}
}

// Transaction 以工作单元方式执行 fn：fn 内通过 tx 访问的全部仓库共享同一事务，
// fn 返回错误或 panic 时整体回滚。
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if fn == nil {
		return nil
	}
	db := s.db
	if ctx != nil {
		db = db.WithContext(ctx)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(s.bind(tx))
	})
}
