package notifier

import "gameswap-api/internal/model"

// Mail copy for each event type. Bodies take the recipient's username.

const (
	passwordChangedSubject = "Password Changed"
	passwordChangedBody    = "Hello %s, your password was changed successfully. If you did not initiate this change, please contact support immediately."
)

// offerTemplate holds the distinct messages for the two parties of an
// offer event.
type offerTemplate struct {
	initiatorSubject string
	initiatorBody    string
	targetSubject    string
	targetBody       string
}

var offerTemplates = map[string]offerTemplate{
	model.EventOfferCreated: {
		initiatorSubject: "Offer created",
		initiatorBody:    "Hello %s, your offer was created successfully.",
		targetSubject:    "You received a new offer",
		targetBody:       "Hello %s, you received a new offer.",
	},
	model.EventOfferAccepted: {
		initiatorSubject: "Your offer was accepted",
		initiatorBody:    "Hello %s, your offer was accepted.",
		targetSubject:    "You accepted an offer",
		targetBody:       "Hello %s, you accepted an offer.",
	},
	model.EventOfferRejected: {
		initiatorSubject: "Your offer was rejected",
		initiatorBody:    "Hello %s, your offer was rejected.",
		targetSubject:    "You rejected an offer",
		targetBody:       "Hello %s, you rejected an offer.",
	},
}
