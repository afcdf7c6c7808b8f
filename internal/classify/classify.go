// Package classify sorts provider and tool failures into recovery
// categories so the orchestrator can decide between retrying, apologizing,
// and resetting the conversation.
package classify

import (
	"errors"
	"strings"

	"github.com/pirlo1121/I-am-poor/internal/provider"
)

// Category describes how an error should be handled.
type Category string

const (
	// Critical errors mean the conversation state itself may be poisoned
	// (bad credentials, exhausted quota). The session is reset.
	Critical Category = "critical"

	// Transient errors are worth retrying: timeouts, flaky networks,
	// upstream 5xx.
	Transient Category = "transient"

	// UserInput errors come from a malformed request the model built;
	// the user can rephrase and try again.
	UserInput Category = "user_input"

	// Recoverable is the default: something went wrong, the session
	// survives, the user is told to try again.
	Recoverable Category = "recoverable"
)

var criticalMarkers = []string{
	"invalid api key",
	"api key not valid",
	"quota exceeded",
	"rate limit",
	"authentication",
	"unauthorized",
	"permission denied",
}

var transientMarkers = []string{
	"timeout",
	"deadline exceeded",
	"connection",
	"network",
	"unavailable",
	"gateway",
	"502",
	"503",
	"504",
}

var userInputMarkers = []string{
	"invalid parameter",
	"validation",
	"bad request",
	"400",
}

// Classify maps an error to its recovery category. Structured provider
// errors are classified by status code; everything else falls back to
// message inspection.
func Classify(err error) Category {
	if err == nil {
		return Recoverable
	}

	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.IsAuth():
			return Critical
		case pe.IsRateLimit():
			return Critical
		case pe.IsServerError():
			return Transient
		case pe.IsBadRequest():
			return UserInput
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range criticalMarkers {
		if strings.Contains(msg, m) {
			return Critical
		}
	}
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return Transient
		}
	}
	for _, m := range userInputMarkers {
		if strings.Contains(msg, m) {
			return UserInput
		}
	}
	return Recoverable
}

// UserMessage returns the Spanish apology shown to the user for a failed
// turn. The raw error never reaches the chat.
func UserMessage(cat Category) string {
	switch cat {
	case Critical:
		return "⚠️ Tuve un problema con el servicio y reinicié nuestra conversación. Escríbeme de nuevo y seguimos."
	case Transient:
		return "⏳ El servicio está un poco lento en este momento. Inténtalo de nuevo en unos segundos."
	case UserInput:
		return "🤔 No entendí bien esa solicitud. ¿Puedes decirlo de otra forma?"
	default:
		return "⚠️ Algo salió mal procesando tu mensaje. Inténtalo de nuevo."
	}
}
