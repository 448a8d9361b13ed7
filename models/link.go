// Package models — Link tespiti.
//
// SendLinks izni olmayan bir rolün URL içeren mesaj gönderememesi için
// mesaj içeriği üç pattern'a karşı kontrol edilir:
//  1. Scheme prefix'i: "https://", "ftp://" gibi herhangi bir "xxx://"
//  2. "www." ile başlayan token
//  3. Çıplak domain: "ornek.com" gibi "label.tld" görünümü
//
// Amaç kesin URL parse etmek değil — kullanıcının link olarak tıklanabilecek
// bir şey paylaşıp paylaşmadığını yakalamak. False positive kabul edilebilir,
// false negative edilemez.
package models

import "regexp"

var (
	schemeRe     = regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://`)
	wwwRe        = regexp.MustCompile(`(?i)(^|\s)www\.[^\s]+`)
	bareDomainRe = regexp.MustCompile(`(?i)(^|\s)[a-z0-9][a-z0-9-]*\.[a-z]{2,}(/[^\s]*)?(\s|$)`)
)

// ContainsLink, içerikte URL benzeri bir parça olup olmadığını döner.
// true dönerse mesaj için SendMessages'a ek olarak SendLinks izni gerekir.
func ContainsLink(content string) bool {
	if content == "" {
		return false
	}
	return schemeRe.MatchString(content) ||
		wwwRe.MatchString(content) ||
		bareDomainRe.MatchString(content)
}
