// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Error'lar sabit değer olarak tanımlanır ve fmt.Errorf("%w: ...") ile
// sarılarak döndürülür. Karşılaştırma errors.Is ile yapılır:
//
//	if errors.Is(err, pkg.ErrForbidden) { ... }
//
// Böylece service katmanı string karşılaştırması yerine ayırt edilebilir
// error türleriyle çalışır, handler katmanı da bunları HTTP status'a map'ler.
package pkg

import "errors"

// Domain-level error'lar.
// Service katmanı bunları döner, handler yakalar.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrRateLimited  = errors.New("rate limited")
	ErrInternal     = errors.New("internal error")
)
