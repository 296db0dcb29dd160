package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser()

// Peek decodes the claims of raw without checking its signature.
func Peek(raw string) (Claims, error) {
	var c Claims
	if _, _, err := parser.ParseUnverified(raw, &c); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return c, nil
}
