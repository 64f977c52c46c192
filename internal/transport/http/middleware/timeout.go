package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/gamehub-auth/internal/pkg/log"
	apierrors "github.com/pribylovaa/gamehub-auth/internal/transport/http/errors"
)

// Timeout ограничивает запрос дедлайном d. Уже заданный дедлайн не трогается,
// d<=0 отключает мидлвар.
//
// Если дедлайн истёк, а обработчик так ничего и не записал, клиент получает
// 504 в общем конверте ошибок вместо пустого 200.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status != 0 || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}

			logctx.From(r.Context()).Warn("request_deadline_exceeded",
				"path", r.URL.Path,
				"timeout", d,
			)
			apierrors.WriteError(sw, r, ctx.Err())
		})
	}
}
