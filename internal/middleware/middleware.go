package middleware

import (
	"Foodgram-Backend/pkg/tokenstore"
)

type (
	Middleware struct {
		tokenStore tokenstore.TokenStore
	}
)

func NewMiddleware(tokenStore tokenstore.TokenStore) Middleware {
	return Middleware{tokenStore: tokenStore}
}
