package middleware

import "github.com/gin-gonic/gin"

// actorIDKey is the key used to store the authenticated actor's ID in the
// request context.
const actorIDKey = contextKey("actorID")

// GetActorIDFromContext retrieves the authenticated actor ID from the Gin
// context. It returns the actor ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorIDKey))
	if !exists {
		// check in the request context as well
		ctxVal := c.Request.Context().Value(actorIDKey)
		if ctxVal != nil {
			if actorID, ok := ctxVal.(string); ok {
				return actorID, true
			}
		}
		return "", false
	}

	actorID, ok := actorVal.(string)
	if !ok {
		return "", false
	}

	return actorID, true
}
