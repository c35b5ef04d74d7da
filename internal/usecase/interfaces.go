package usecase

import (
	"citywatch/internal/domain/entity"
)

// TokenIssuer signs an identity token for a user. Verification happens at the
// middleware boundary, not in the use cases.
type TokenIssuer interface {
	Generate(user *entity.User) (string, error)
}
