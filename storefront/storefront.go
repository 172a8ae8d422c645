// Package storefront composes the public side of a shop: URL slugs and
// WhatsApp order links.
package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

const waBaseURL = "https://wa.me/"

// PhoneDigits strips everything but digits from a phone number. wa.me
// expects the international number without "+", spaces or dashes.
func PhoneDigits(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// WhatsAppLink returns the wa.me link for phone with a prefilled message.
// ok is false when phone holds no digits.
func WhatsAppLink(phone, message string) (link string, ok bool) {
	digits := PhoneDigits(phone)
	if digits == "" {
		return "", false
	}
	link = waBaseURL + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link, true
}

// OrderMessage is the text prefilled in the customer's WhatsApp chat.
func OrderMessage(shopName, productName string, quantity int, unitPrice decimal.Decimal) string {
	if quantity < 1 {
		quantity = 1
	}
	total := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return fmt.Sprintf("Hello %s, I would like to order %d x %s (%s each, total %s).",
		shopName, quantity, productName, unitPrice.StringFixed(2), total.StringFixed(2))
}

// Slugify lowercases name, drops accents and joins words with "-".
func Slugify(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range norm.NFD.String(name) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			dash = true
		}
	}
	if sb.Len() == 0 {
		return "shop"
	}
	return sb.String()
}

// UniqueSlug returns Slugify(name), or the first "-2", "-3", ... variant for
// which exists reports false.
func UniqueSlug(ctx context.Context, name string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := Slugify(name)
	slug := base
	for i := 2; ; i++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}
