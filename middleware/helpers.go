package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimChatID = "chat_id"
	jwtClaimScope  = "scope"
)

func GetChatIDFromContext(ctx context.Context) (int64, error) {
	claims, ok := ctx.Value(spectatorContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("spectator claims not found in context or invalid type")
	}
	return chatIDFromClaims(claims)
}

func chatIDFromClaims(claims jwt.MapClaims) (int64, error) {
	chatIDClaim, ok := claims[jwtClaimChatID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimChatID)
	}

	// JSON numbers decode as float64.
	chatIDFloat, ok := chatIDClaim.(float64)
	if !ok {
		if chatID, okInt := chatIDClaim.(int64); okInt {
			return chatID, nil
		}
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number, got %T", jwtClaimChatID, chatIDClaim)
	}
	if chatIDFloat != float64(int64(chatIDFloat)) {
		return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimChatID, chatIDFloat)
	}
	if chatIDFloat == 0 {
		return 0, fmt.Errorf("invalid chat ID value in '%s' claim", jwtClaimChatID)
	}
	return int64(chatIDFloat), nil
}
