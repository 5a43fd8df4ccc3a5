package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/pkg/response"
)

type ctxKey string

const identityKey ctxKey = "seller_identity"

// Identity trusts the gateway-authenticated seller headers and turns them
// into an explicit domain.Identity on the request context. Authentication
// itself happens upstream; this core only consumes the result.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := strconv.ParseInt(r.Header.Get("X-Seller-ID"), 10, 64)
		if err != nil || sellerID <= 0 {
			response.Error(w, http.StatusUnauthorized, "missing seller identity")
			return
		}

		ident := domain.Identity{
			SellerID:    sellerID,
			DisplayName: r.Header.Get("X-Seller-Name"),
		}

		ctx := context.WithValue(r.Context(), identityKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom returns the seller identity placed by the Identity middleware.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(domain.Identity)
	return ident, ok
}

const operatorKey ctxKey = "operator_identity"

// Operator gates the back-office review endpoints on the gateway's operator
// headers. Seller headers never satisfy it, so a seller cannot reach the
// approval surface for their own entries.
func Operator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := strconv.ParseInt(r.Header.Get("X-Operator-ID"), 10, 64)
		if err != nil || operatorID <= 0 {
			response.Error(w, http.StatusUnauthorized, "missing operator identity")
			return
		}

		op := domain.Operator{
			ID:          operatorID,
			DisplayName: r.Header.Get("X-Operator-Name"),
		}

		ctx := context.WithValue(r.Context(), operatorKey, op)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OperatorFrom returns the operator placed by the Operator middleware.
func OperatorFrom(ctx context.Context) (domain.Operator, bool) {
	op, ok := ctx.Value(operatorKey).(domain.Operator)
	return op, ok
}
