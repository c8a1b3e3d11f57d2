package server

import "github.com/Brownie44l1/embedhttp/internal/response"

// outcome carries either a value for the next dispatch stage or a
// response that ends dispatch early.
type outcome[T any] struct {
	value T
	reply *response.Response
}

func proceed[T any](v T) outcome[T] {
	return outcome[T]{value: v}
}

func reply[T any](r *response.Response) outcome[T] {
	return outcome[T]{reply: r}
}

// bind runs next only when o has not already produced a response.
func bind[T, U any](o outcome[T], next func(T) outcome[U]) outcome[U] {
	if o.reply != nil {
		return reply[U](o.reply)
	}
	return next(o.value)
}

func finish(o outcome[*response.Response]) *response.Response {
	if o.reply != nil {
		return o.reply
	}
	return o.value
}
