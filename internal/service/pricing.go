package service

import "aerium/internal/domain"

// ResolvePrice считает цену строки корзины.
// Явно переданная клиентом цена принимается как есть (без пересчёта —
// известная особенность протокола). Иначе:
// (цена товара + наценка аромата) × количество; количество <= 0 считается за 1.
func ResolvePrice(product *domain.Product, quantity int64, aroma *domain.Aroma, explicit *float64) float64 {
	if explicit != nil {
		return *explicit
	}
	if quantity <= 0 {
		quantity = 1
	}
	price := product.Price
	if aroma != nil {
		price += aroma.Price
	}
	return price * float64(quantity)
}
