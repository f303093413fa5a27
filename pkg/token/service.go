package token

import (
	"crypto/rsa"
	"fmt"

	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/asianpilots/volunteer-manager/pkg/token/helper"
)

func NewService(privateKey *rsa.PrivateKey, accessTokenExpirationSeconds int) *Service {
	return &Service{
		privateKey:                   privateKey,
		accessTokenExpirationSeconds: accessTokenExpirationSeconds,
	}
}

// Service issues the signed access tokens stored in the accessToken cookie.
type Service struct {
	privateKey                   *rsa.PrivateKey
	accessTokenExpirationSeconds int
}

func (s Service) GetAccessToken(user *model.Profile) (string, error) {
	accessToken, err := helper.GenerateAccessToken(user, s.privateKey, s.accessTokenExpirationSeconds)
	if err != nil {
		return "", fmt.Errorf("error generating accessToken for user %s: %v", user.ID, err)
	}
	return accessToken, nil
}

func (s Service) ExpirationSeconds() int {
	return s.accessTokenExpirationSeconds
}

func (s Service) PublicKey() *rsa.PublicKey {
	return &s.privateKey.PublicKey
}
