package credentials

import (
	"crypto/rand"
	"math/big"
)

// provisionalRange bounds locally generated identities and PINs. Entities
// created before a server round-trip live in [0, 1000) and keep that id
// for their lifetime.
const provisionalRange = 1000

// Avatar images bundled with the app, assigned randomly at profile creation
var avatarPalette = []string{
	"Hero 6.png", "Hero 11.png", "Hero 12.png", "Hero 13.png", "Hero 14.png",
	"Hero 15.png", "Hero 16.png", "Hero 18.png", "Hero 19.png",
}

// ProvisionalID generates a random local identity in [0, 1000)
func ProvisionalID() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(provisionalRange))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// ProvisionalPIN generates a random short authentication code in [0, 1000)
func ProvisionalPIN() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(provisionalRange))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

// RandomAvatar picks a random avatar from the fixed palette
func RandomAvatar() (string, error) {
	return randomElement(avatarPalette)
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
