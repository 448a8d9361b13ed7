// Package repository, veritabanı erişim katmanını tanımlar.
//
// Service katmanı doğrudan SQL yazmaz — her aggregate için bir interface
// ve onun SQLite implementasyonu vardır. Interface sayesinde testlerde
// fake repository kullanılabilir, service concrete struct'a bağımlı olmaz.
//
// Tüm constructor'lar database.Querier alır: aynı implementasyon hem
// *sql.DB hem *sql.Tx ile çalışır. Transaction gerektiren service'ler
// database.WithTx içinde tx-bound repository kurar.
package repository

import (
	"context"

	"github.com/veyra-chat/server/models"
)

// UserRepository, kullanıcı hesabı işlemleri için interface.
//
// Delete yoktur: kullanıcı asla hard-delete edilmez, Anonymize kullanılır.
// Mesaj geçmişindeki foreign key'ler böylece bozulmaz.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// Anonymize, hesabı kalıcı olarak kullanım dışı bırakır:
	// display name sabit değere çekilir, hash sentinel olur, avatar silinir.
	Anonymize(ctx context.Context, id string) error
}
