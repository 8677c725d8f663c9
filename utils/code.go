package utils

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// stageCodeTTL bounds how long a stage verification code stays mirrored in
// Redis. The booking document remains the source of truth; the mirror only
// serves quick lookups for client apps re-displaying the code.
const stageCodeTTL = 24 * time.Hour

// NewStageCode generates a secure random stage verification code of the given
// length. It returns a base32 encoded string (without padding) truncated to
// the desired length.
func NewStageCode(length int) (string, error) {
	numBytes := (length*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	code := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	if len(code) > length {
		code = code[:length]
	}
	return code, nil
}

func stageCodeKey(bookingID string) string {
	return fmt.Sprintf("stagecode:%s", bookingID)
}

// MirrorStageCode stores the pending stage code for a booking in Redis. A
// failure here is logged and ignored: the code on the booking document is
// what the lifecycle machine compares against.
func MirrorStageCode(ctx context.Context, bookingID, code string) {
	client := GetCodeCacheClient()
	if err := client.Set(ctx, stageCodeKey(bookingID), code, stageCodeTTL).Err(); err != nil {
		GetLogger().Error("Failed to mirror stage code", zap.String("bookingID", bookingID), zap.Error(err))
	}
}

// DropStageCode removes the mirrored code once it has been consumed.
func DropStageCode(ctx context.Context, bookingID string) {
	client := GetCodeCacheClient()
	if err := client.Del(ctx, stageCodeKey(bookingID)).Err(); err != nil {
		GetLogger().Error("Failed to drop stage code", zap.String("bookingID", bookingID), zap.Error(err))
	}
}
