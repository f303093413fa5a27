package helper

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"time"

	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// UserClaim is the private claim holding the signed-in profile.
const UserClaim = "user"

func GenerateAccessToken(user *model.Profile, key *rsa.PrivateKey, expirationInSeconds int) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		Subject(user.ID.String()).
		IssuedAt(now).
		Expiration(now.Add(time.Duration(expirationInSeconds)*time.Second)).
		Claim(UserClaim, user).
		Build()
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, key))
	if err != nil {
		return "", err
	}

	return string(signed), nil
}

func ValidateAccessToken(tokenString string, key *rsa.PublicKey) (*model.Profile, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.RS256, key),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, err
	}

	return ExtractUser(token)
}

// ExtractUser decodes the profile stored in the user claim of token.
func ExtractUser(token jwt.Token) (*model.Profile, error) {
	userData, ok := token.Get(UserClaim)
	if !ok {
		return nil, errors.New("user not found in claims")
	}

	bytes, err := json.Marshal(userData)
	if err != nil {
		return nil, err
	}

	user := &model.Profile{}
	err = json.Unmarshal(bytes, user)
	return user, err
}
