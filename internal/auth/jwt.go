package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("invalid token")
var ErrTokenExpired = errors.New("token expired")

// Kind separates tokens that share a signing key but not a purpose.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindMail    Kind = "mail"
)

const (
	AccessTTL  = 24 * time.Hour
	RefreshTTL = 30 * 24 * time.Hour
	MailTTL    = 10 * time.Hour
)

type Claims struct {
	Kind  Kind   `json:"knd"`
	Email string `json:"eml,omitempty"`
	jwt.RegisteredClaims
}

// AvatarID parses the subject.
func (c *Claims) AvatarID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// JWT signs access and refresh tokens with one secret and mail
// confirmation tokens with another.
type JWT struct {
	secret     []byte
	mailSecret []byte
	now        func() time.Time
}

func NewJWT(secret, mailSecret string) *JWT {
	if mailSecret == "" {
		mailSecret = secret
	}
	return &JWT{secret: []byte(secret), mailSecret: []byte(mailSecret), now: time.Now}
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignPair issues a fresh access and refresh token for an avatar.
func (j *JWT) SignPair(avatarID uint64) (Pair, error) {
	access, err := j.Sign(avatarID, KindAccess)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := j.Sign(avatarID, KindRefresh)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (j *JWT) Sign(avatarID uint64, kind Kind) (string, error) {
	ttl := AccessTTL
	if kind == KindRefresh {
		ttl = RefreshTTL
	}
	return j.sign(j.secret, avatarID, kind, "", ttl)
}

// SignMail issues a confirmation token bound to the address it was sent to.
func (j *JWT) SignMail(avatarID uint64, email string) (string, error) {
	return j.sign(j.mailSecret, avatarID, KindMail, email, MailTTL)
}

func (j *JWT) sign(secret []byte, avatarID uint64, kind Kind, email string, ttl time.Duration) (string, error) {
	now := j.now()
	claims := Claims{
		Kind:  kind,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(avatarID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Verify checks signature, expiry and kind. Expired tokens return
// ErrTokenExpired, anything else wrong returns ErrTokenInvalid.
func (j *JWT) Verify(tokenStr string, kind Kind) (*Claims, error) {
	secret := j.secret
	if kind == KindMail {
		secret = j.mailSecret
	}

	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil || !t.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.AvatarID(); err != nil {
		return nil, err
	}
	return claims, nil
}
