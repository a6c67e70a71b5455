package preview

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "vitrine/pkg/domain"
	dErrors "vitrine/pkg/domain-errors"
)

// TokenTTL bounds how long a minted channel token stays usable. Preview
// sessions are short-lived; editors re-mint on reconnect.
const TokenTTL = 15 * time.Minute

// TokenIssuer mints and verifies the channel tokens that bind a publisher to
// one shop's preview channel. A token is a channel credential, not a user
// identity: authentication of the author happens upstream.
type TokenIssuer struct {
	signingKey []byte
}

func NewTokenIssuer(signingKey string) *TokenIssuer {
	return &TokenIssuer{signingKey: []byte(signingKey)}
}

type channelClaims struct {
	jwt.RegisteredClaims
	ShopID string `json:"shop_id"`
}

// Mint issues a token scoped to the given shop.
func (t *TokenIssuer) Mint(shopID id.ShopID, now time.Time) (string, error) {
	claims := channelClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		ShopID: shopID.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey)
}

// Verify checks the token signature and expiry and confirms it is bound to
// the expected shop.
func (t *TokenIssuer) Verify(tokenString string, shopID id.ShopID) error {
	var claims channelClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.signingKey, nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeForbidden, "invalid preview channel token")
	}
	if claims.ShopID != shopID.String() {
		return dErrors.New(dErrors.CodeForbidden, "preview channel token is bound to another shop")
	}
	return nil
}
