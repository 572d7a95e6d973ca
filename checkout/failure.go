package checkout

// failureLabels maps provider failure codes to the human-readable titles
// shown in failure notifications.
var failureLabels = map[string]string{
	"card_declined":          "Card Declined",
	"insufficient_funds":     "Insufficient Funds",
	"lost_card":              "Lost Card",
	"stolen_card":            "Stolen Card",
	"expired_card":           "Expired Card",
	"incorrect_cvc":          "Incorrect CVC",
	"processing_error":       "Processing Error",
	"incorrect_number":       "Incorrect Card Number",
	"card_velocity_exceeded": "Card Velocity Exceeded",
}

// FailureLabel returns the display title for a provider failure code, or a
// generic fallback when the code is unknown or empty.
func FailureLabel(code *string) string {
	if code == nil || *code == "" {
		return "Payment Failed"
	}
	if label, ok := failureLabels[*code]; ok {
		return label
	}
	return "Payment Failed"
}
