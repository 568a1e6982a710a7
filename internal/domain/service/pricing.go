package service

import (
	"github.com/shopspring/decimal"

	"usmbot/internal/domain/model"
)

// pricePlaces 计价货币精度（美元到分）
const pricePlaces = 2

// TakeProfitPrice 返回 round(price + price*markup, 2)
// 十进制运算，四舍五入远离零：2000 -> 2200.00，1999.995 -> 2199.99
func TakeProfitPrice(price, markup float64) decimal.Decimal {
	p := decimal.NewFromFloat(price)
	return p.Add(p.Mul(decimal.NewFromFloat(markup))).Round(pricePlaces)
}

// NewSellPlan builds the protective sell from the post-buy price and balance.
func NewSellPlan(asset string, quantity, marketPrice, markup float64) model.SellPlan {
	return model.SellPlan{
		Asset:      asset,
		Quantity:   quantity,
		LimitPrice: TakeProfitPrice(marketPrice, markup),
	}
}
