package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncodeSequenceToken creates a base64 encoded cursor from an account ID and
// the sequence number of the last entry included in the page. Statement reads
// resume strictly after that sequence.
func EncodeSequenceToken(accountID string, sequence int64) string {
	tokenStr := fmt.Sprintf("%s|%d", accountID, sequence)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeSequenceToken parses the cursor back into account ID and sequence.
func DecodeSequenceToken(token string) (string, int64, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid pagination token format (split)")
	}
	sequence, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid pagination token format (sequence parse): %w", err)
	}
	return parts[0], sequence, nil
}
