package preview

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "vitrine/pkg/domain"
	dErrors "vitrine/pkg/domain-errors"
)

// =============================================================================
// Channel Token Suite
// =============================================================================

type TokenSuite struct {
	suite.Suite
	issuer *TokenIssuer
	shopID id.ShopID
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) SetupTest() {
	s.issuer = NewTokenIssuer("unit-test-signing-key")
	s.shopID = id.ShopID(uuid.New())
}

func (s *TokenSuite) TestMintAndVerify() {
	s.Run("freshly minted token verifies for its shop", func() {
		token, err := s.issuer.Mint(s.shopID, time.Now())
		s.Require().NoError(err)
		s.NoError(s.issuer.Verify(token, s.shopID))
	})

	s.Run("token is bound to one shop", func() {
		token, err := s.issuer.Mint(s.shopID, time.Now())
		s.Require().NoError(err)

		err = s.issuer.Verify(token, id.ShopID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("expired token is rejected", func() {
		token, err := s.issuer.Mint(s.shopID, time.Now().Add(-TokenTTL-time.Minute))
		s.Require().NoError(err)

		err = s.issuer.Verify(token, s.shopID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("token signed with a different key is rejected", func() {
		other := NewTokenIssuer("some-other-key")
		token, err := other.Mint(s.shopID, time.Now())
		s.Require().NoError(err)

		err = s.issuer.Verify(token, s.shopID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("garbage token is rejected", func() {
		err := s.issuer.Verify("not.a.jwt", s.shopID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("empty token is rejected", func() {
		err := s.issuer.Verify("", s.shopID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
